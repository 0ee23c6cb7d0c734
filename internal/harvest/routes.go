package harvest

import "strings"

// Route maps an operation with an irregular URL onto a fixed path template.
// Path may contain "{id}". When the id is absent PathWithoutID is used; an
// empty PathWithoutID means the id is required.
type Route struct {
	Path          string
	PathWithoutID string
}

// Routes is an operation name to Route table.
type Routes map[string]Route

func (r Route) needsID() bool {
	return strings.Contains(r.Path, "{id}") && r.PathWithoutID == ""
}

func (r Route) expand(id string, hasID bool) string {
	if !hasID && r.PathWithoutID != "" {
		return r.PathWithoutID
	}
	return strings.ReplaceAll(r.Path, "{id}", id)
}

// DefaultRoutes returns the Harvest endpoints whose paths cannot be derived
// from the operation name.
func DefaultRoutes() Routes {
	return Routes{
		"getActivityFeedForCandidate":     {Path: "candidates/{id}/activity_feed"},
		"postNoteForCandidate":            {Path: "candidates/{id}/activity_feed/notes"},
		"postEmailNoteForCandidate":       {Path: "candidates/{id}/activity_feed/emails"},
		"putAnonymizeCandidate":           {Path: "candidates/{id}/anonymize"},
		"putMergeCandidates":              {Path: "candidates/merge"},
		"getJobPostsForJob":               {Path: "jobs/{id}/job_post"},
		"getJobStagesForJob":              {Path: "jobs/{id}/stages"},
		"getCurrentOfferForApplication":   {Path: "applications/{id}/offers/current_offer"},
		"patchCurrentOfferForApplication": {Path: "applications/{id}/offers/current_offer"},
		"postAdvanceApplication":          {Path: "applications/{id}/advance"},
		"postMoveApplication":             {Path: "applications/{id}/move"},
		"postTransferApplicationToJob":    {Path: "applications/{id}/transfer_to_job"},
		"postRejectApplication":           {Path: "applications/{id}/reject"},
		"postUnrejectApplication":         {Path: "applications/{id}/unreject"},

		"getCustomFields":                        {Path: "custom_fields/{id}", PathWithoutID: "custom_fields/"},
		"getCustomField":                         {Path: "custom_field/{id}"},
		"getCustomFieldOptionsForCustomField":    {Path: "custom_field/{id}/custom_field_options"},
		"postCustomFieldOptionsForCustomField":   {Path: "custom_field/{id}/custom_field_options"},
		"patchCustomFieldOptionsForCustomField":  {Path: "custom_field/{id}/custom_field_options"},
		"deleteCustomFieldOptionsForCustomField": {Path: "custom_field/{id}/custom_field_options"},

		"getEeoc": {Path: "eeoc/{id}", PathWithoutID: "eeoc"},

		"getHiringTeamForJob":    {Path: "jobs/{id}/hiring_team"},
		"postHiringTeamForJob":   {Path: "jobs/{id}/hiring_team"},
		"putHiringTeamForJob":    {Path: "jobs/{id}/hiring_team"},
		"deleteHiringTeamForJob": {Path: "jobs/{id}/hiring_team"},

		"getCandidateTags":  {Path: "tags/candidate"},
		"postCandidateTags": {Path: "tags/candidate"},

		"patchEnableUser":  {Path: "users/{id}/enable"},
		"patchDisableUser": {Path: "users/{id}/disable"},

		"getQuestionSetsForDemographics":              {Path: "demographics/question_sets/{id}", PathWithoutID: "demographics/question_sets"},
		"getQuestionsForQuestionSetsForDemographics":  {Path: "demographics/question_sets/{id}/questions"},
		"getQuestionsForDemographics":                 {Path: "demographics/questions/{id}", PathWithoutID: "demographics/questions"},
		"getAnswerOptionsForQuestionsForDemographics": {Path: "demographics/questions/{id}/answer_options"},
		"getAnswerOptionsForDemographics":             {Path: "demographics/answer_options/{id}", PathWithoutID: "demographics/answer_options"},
		"getAnswersForDemographics":                   {Path: "demographics/answers/{id}", PathWithoutID: "demographics/answers"},
		"getDemographicAnswersForApplications":        {Path: "applications/{id}/demographics/answers"},
	}
}
