package schema

func init() {
	RegisterDefaults()
}

// RegisterDefaults registers the built-in Greenhouse resource schemas.
func RegisterDefaults() {
	registerJob()
	registerQuestion()
	registerDepartment()
	registerOffice()
	registerApplication()
	registerHarvestRequest()
}

func location() *Schema {
	return Object("Job location", map[string]*Schema{
		"name": String("Free-form location name"),
	})
}

func registerJob() {
	Register("job", Object(
		"A published job post on a Job Board",
		map[string]*Schema{
			"id":               Int("Job post identifier"),
			"internal_job_id":  Int("Identifier of the job the post belongs to"),
			"title":            String("Job title"),
			"updated_at":       Timestamp("Last update time"),
			"requisition_id":   String("Requisition identifier"),
			"location":         location(),
			"absolute_url":     String("Hosted job page URL"),
			"content":          String("HTML-escaped job description (with content=true)"),
			"departments":      Array(Map("Department summary"), "Departments of the job"),
			"offices":          Array(Map("Office summary"), "Offices of the job"),
			"questions":        Array(Map("Application question"), "Application questions (with questions=true)"),
			"pay_input_ranges": Array(Map("Pay range"), "Pay transparency ranges (with pay_transparency=true)"),
		},
		"id", "title",
	))
}

func registerQuestion() {
	Register("question", Object(
		"One application form question",
		map[string]*Schema{
			"label":       String("Question label"),
			"required":    Bool("Whether a submission must answer it"),
			"description": String("Help text"),
			"fields": Array(Object("Accepted input", map[string]*Schema{
				"name": String("Submission field name"),
				"type": Enum("Input type",
					"input_text", "input_file", "input_hidden", "textarea",
					"multi_value_single_select", "multi_value_multi_select"),
				"values": Array(Map("Selectable option"), "Options for select inputs"),
			}, "name", "type"), "Inputs that answer the question; any one satisfies it"),
		},
		"label", "required", "fields",
	))
}

func registerDepartment() {
	Register("department", Object(
		"A department grouping jobs",
		map[string]*Schema{
			"id":        Int("Department identifier"),
			"name":      String("Department name"),
			"parent_id": Int("Parent department (null at the top level)"),
			"child_ids": Array(Int("Department identifier"), "Child departments"),
			"jobs":      Array(Map("Job summary"), "Jobs in the department"),
		},
		"id", "name",
	))
}

func registerOffice() {
	Register("office", Object(
		"An office grouping departments",
		map[string]*Schema{
			"id":          Int("Office identifier"),
			"name":        String("Office name"),
			"location":    String("Office location"),
			"parent_id":   Int("Parent office (null at the top level)"),
			"child_ids":   Array(Int("Office identifier"), "Child offices"),
			"departments": Array(Map("Department"), "Departments in the office"),
		},
		"id", "name",
	))
}

func registerApplication() {
	Register("application", Object(
		"A candidate application submission, sent as multipart form data",
		map[string]*Schema{
			"id":               Int("Job post identifier"),
			"first_name":       String("Candidate first name"),
			"last_name":        String("Candidate last name"),
			"email":            String("Candidate email"),
			"phone":            String("Candidate phone"),
			"resume":           String("Resume file upload"),
			"resume_text":      String("Resume as plain text"),
			"cover_letter":     String("Cover letter file upload"),
			"mapped_url_token": String("Source tracking token from the gh_src URL parameter"),
			"question_*":       String("Answer to a custom question; arrays encode as question_N[]"),
		},
		"id",
	))
}

func registerHarvestRequest() {
	Register("harvest_request", Object(
		"A resolved Harvest operation",
		map[string]*Schema{
			"method":  Enum("HTTP method", "get", "post", "patch", "put", "delete"),
			"url":     String("Path relative to the versioned Harvest root, with query string"),
			"headers": Map("Extra request headers such as On-Behalf-Of"),
			"body":    String("JSON request body"),
		},
		"method", "url",
	))
}
