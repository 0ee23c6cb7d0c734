package jobboard

// Board is the job board summary returned by the "board" endpoint.
type Board struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Location is a free-form job location.
type Location struct {
	Name string `json:"name"`
}

// Job is a published job post. Questions and PayInputRanges are only present
// when requested.
type Job struct {
	ID             int64        `json:"id" csv:"id"`
	InternalJobID  int64        `json:"internal_job_id,omitempty" csv:"internal_job_id"`
	Title          string       `json:"title" csv:"title"`
	UpdatedAt      string       `json:"updated_at,omitempty" csv:"updated_at"`
	RequisitionID  string       `json:"requisition_id,omitempty" csv:"requisition_id"`
	Location       Location     `json:"location" csv:"-"`
	AbsoluteURL    string       `json:"absolute_url,omitempty" csv:"absolute_url"`
	Content        string       `json:"content,omitempty" csv:"-"`
	Departments    []Department `json:"departments,omitempty" csv:"-"`
	Offices        []Office     `json:"offices,omitempty" csv:"-"`
	Questions      []Question   `json:"questions,omitempty" csv:"-"`
	PayInputRanges []PayRange   `json:"pay_input_ranges,omitempty" csv:"-"`
}

// Question is one application form question.
type Question struct {
	Label       string          `json:"label"`
	Required    bool            `json:"required"`
	Description string          `json:"description,omitempty"`
	Fields      []QuestionField `json:"fields"`
}

// QuestionField is one accepted input for a question. A question may accept
// several, e.g. "resume" or "resume_text".
type QuestionField struct {
	Name   string       `json:"name"`
	Type   string       `json:"type"`
	Values []FieldValue `json:"values,omitempty"`
}

// FieldValue is a selectable option for a select field.
type FieldValue struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// PayRange is a pay transparency range.
type PayRange struct {
	MinCents     int64  `json:"min_cents"`
	MaxCents     int64  `json:"max_cents"`
	CurrencyType string `json:"currency_type"`
	Title        string `json:"title"`
	Blurb        string `json:"blurb,omitempty"`
}

// Department groups jobs. Jobs is populated by the departments endpoints.
type Department struct {
	ID       int64   `json:"id" csv:"id"`
	Name     string  `json:"name" csv:"name"`
	ParentID *int64  `json:"parent_id,omitempty" csv:"-"`
	ChildIDs []int64 `json:"child_ids,omitempty" csv:"-"`
	Jobs     []Job   `json:"jobs,omitempty" csv:"-"`
}

// Office groups departments by location.
type Office struct {
	ID          int64        `json:"id" csv:"id"`
	Name        string       `json:"name" csv:"name"`
	Location    string       `json:"location,omitempty" csv:"location"`
	ParentID    *int64       `json:"parent_id,omitempty" csv:"-"`
	ChildIDs    []int64      `json:"child_ids,omitempty" csv:"-"`
	Departments []Department `json:"departments,omitempty" csv:"-"`
}

type jobsResponse struct {
	Jobs []Job `json:"jobs"`
	Meta struct {
		Total int `json:"total"`
	} `json:"meta"`
}

type departmentsResponse struct {
	Departments []Department `json:"departments"`
}

type officesResponse struct {
	Offices []Office `json:"offices"`
}
