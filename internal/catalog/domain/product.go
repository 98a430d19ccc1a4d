package domain

type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Category    string
	Images      []string
}
