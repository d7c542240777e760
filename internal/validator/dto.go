package validator

// CreateSpaceRequest carries the form fields for space creation.
type CreateSpaceRequest struct {
	Name string `form:"name" json:"name" validate:"required,max=256"`
}

// JoinSpaceRequest carries the join code presented by a pupil.
type JoinSpaceRequest struct {
	Code string `form:"code" json:"code" validate:"required,max=32"`
}

// CreateAssignmentRequest carries assignment creation fields. DueDate is
// the raw form string: a bad value degrades to no due date with a
// warning rather than aborting the create.
type CreateAssignmentRequest struct {
	Title       string  `form:"title" json:"title" validate:"required,max=256"`
	Description *string `form:"description" json:"description" validate:"omitempty,max=2000"`
	DueDate     string  `form:"due_date" json:"due_date"`
}

// EditAssignmentRequest mirrors CreateAssignmentRequest; title and
// description always overwrite, the due date follows the degrade rules.
type EditAssignmentRequest struct {
	Title       string  `form:"title" json:"title" validate:"required,max=256"`
	Description *string `form:"description" json:"description" validate:"omitempty,max=2000"`
	DueDate     string  `form:"due_date" json:"due_date"`
}
