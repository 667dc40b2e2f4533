package categorize

// keywordGroup maps description substrings to account-name fragments. The
// table is an ordered slice, not a map: evaluation order is part of the
// contract (first group with a keyword hit and a resolvable account wins).
type keywordGroup struct {
	keywords  []string
	fragments []string
}

var heuristicTable = []keywordGroup{
	{[]string{"salary", "payroll", "wages"}, []string{"salary", "payroll"}},
	{[]string{"rent"}, []string{"rent"}},
	{[]string{"electricity", "power", "utility"}, []string{"electricity", "utility"}},
	{[]string{"telephone", "mobile", "internet", "broadband"}, []string{"telephone", "communication", "internet"}},
	{[]string{"gst", "tax"}, []string{"gst", "tax"}},
	{[]string{"insurance"}, []string{"insurance"}},
	{[]string{"interest"}, []string{"interest"}},
	{[]string{"bank charge", "charges", "fee"}, []string{"bank charge", "charges"}},
	{[]string{"fuel", "petrol", "diesel"}, []string{"fuel", "vehicle"}},
}
