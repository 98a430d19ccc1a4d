package domain

type QuoteLine struct {
	LineID    string
	ProductID string
	Name      string
	Quantity  int
	UnitPrice float64
	LineTotal float64
}

type Quote struct {
	Lines     []QuoteLine
	ItemCount int
	Total     float64
}
