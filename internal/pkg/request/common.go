package request

// ByIDRequest is a common struct for endpoints that take a UUID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// Validate performs custom validation for ByIDRequest.
func (r *ByIDRequest) Validate() error {
	return nil
}

// DateQuery carries a YYYY-MM-DD date in the query string.
type DateQuery struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}
