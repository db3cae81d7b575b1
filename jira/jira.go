// Package jira implements [ticketchat.TicketService] against the Jira Cloud
// REST API v3.
package jira

import (
	"fmt"
	"strings"
)

const (
	apiPrefix         = "/rest/api/3"
	defaultIssueType  = "Task"
	defaultMaxResults = 10
)

// Error is a non-success response from Jira.
type Error struct {
	StatusCode int
	Messages   []string
}

func (e *Error) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("jira: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("jira: HTTP %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
}

type apiErrorResponse struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}

type apiCreateIssueRequest struct {
	Fields apiIssueFields `json:"fields"`
}

type apiIssueFields struct {
	Project     *apiProject   `json:"project,omitempty"`
	Summary     string        `json:"summary,omitempty"`
	Description *Document     `json:"description,omitempty"`
	IssueType   *apiIssueType `json:"issuetype,omitempty"`
}

type apiProject struct {
	Key string `json:"key"`
}

type apiIssueType struct {
	Name string `json:"name"`
}

type apiCreateIssueResponse struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

type apiSearchResponse struct {
	Issues []apiIssue `json:"issues"`
}

type apiIssue struct {
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
		Status  struct {
			Name string `json:"name"`
		} `json:"status"`
	} `json:"fields"`
}

type apiTransitionsResponse struct {
	Transitions []apiTransition `json:"transitions"`
}

type apiTransition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type apiDoTransitionRequest struct {
	Transition apiTransitionRef `json:"transition"`
}

type apiTransitionRef struct {
	ID string `json:"id"`
}

type apiCommentRequest struct {
	Body *Document `json:"body"`
}
