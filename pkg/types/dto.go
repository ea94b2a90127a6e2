package types

// Request payloads for the finance API routes the pipeline fronts. These are
// the declared schemas the schema guard validates against; handlers receive
// them fully typed once admission succeeds.

type CreateIncomeRequest struct {
	Source string  `json:"source" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Date   string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Notes  string  `json:"notes" validate:"omitempty,max=500"`
}

type CreateBillRequest struct {
	Name     string  `json:"name" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	DueDate  string  `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Category string  `json:"category" validate:"omitempty,max=100"`
	AutoPay  bool    `json:"autoPay"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// ListQuery is the query-string schema shared by the list endpoints.
// Values arrive as flat strings and are decoded per-field before validation.
type ListQuery struct {
	Page     int    `json:"page" validate:"omitempty,gte=1"`
	Limit    int    `json:"limit" validate:"omitempty,gte=1,lte=100"`
	Category string `json:"category" validate:"omitempty,max=100"`
}
