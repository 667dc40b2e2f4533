package models

type FiscalYear struct {
	FiscalYearID string `json:"fiscalYearId"`
	CompanyID    string `json:"companyId"`
	Name         string `json:"name"`      // e.g. "2024-25", used in entry numbers
	StartDate    string `json:"startDate"` // YYYY-MM-DD
	EndDate      string `json:"endDate"`
	IsCurrent    bool   `json:"isCurrent"`
}
