// Package router classifies free-text chat messages into coarse actions
// for the conversational assistant endpoint. Pure keyword matching with
// a fixed priority order, no model call involved.
package router

import (
	"regexp"
	"strings"
)

// Action is the coarse intent of a chat message.
type Action int

const (
	ActionGeneral Action = iota
	ActionBuild
	ActionShow
	ActionUpdate
	ActionDeploy
	ActionGreet
)

func (a Action) String() string {
	switch a {
	case ActionBuild:
		return "build"
	case ActionShow:
		return "show"
	case ActionUpdate:
		return "update"
	case ActionDeploy:
		return "deploy"
	case ActionGreet:
		return "greet"
	default:
		return "general"
	}
}

// Intent is the classification result.
type Intent struct {
	Action  Action
	Project string
}

// Keyword sets, checked in priority order. Build phrases outrank show,
// show outranks update, update outranks deploy, deploy outranks greetings.
var (
	buildKeywords  = []string{"build a website", "create a website", "build website", "create website", "make a website", "make me a website", "build a site", "create a site", "new website"}
	showKeywords   = []string{"show", "list", "what projects", "my projects", "my websites"}
	updateKeywords = []string{"update", "modify", "change", "edit", "add to", "improve"}
	deployKeywords = []string{"deploy", "publish", "go live", "launch"}
	greetKeywords  = []string{"hello", "hi", "hey", "good morning", "good evening", "thanks", "thank you", "bye", "goodbye"}
)

// Patterns that recover a project name when no known project matched.
var projectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:update|modify|change|edit|improve)\s+(?:the\s+)?([a-z0-9][a-z0-9_-]*)`),
	regexp.MustCompile(`(?:deploy|publish|launch)\s+(?:the\s+)?([a-z0-9][a-z0-9_-]*)`),
	regexp.MustCompile(`(?:called|named)\s+([a-z0-9][a-z0-9_-]*)`),
	regexp.MustCompile(`project\s+([a-z0-9][a-z0-9_-]*)`),
}

// Words the patterns may capture that are never project names.
var stopWords = map[string]bool{
	"the": true, "my": true, "a": true, "an": true, "it": true,
	"website": true, "site": true, "project": true, "page": true,
}

// Classify inspects a message and returns the action to take plus the
// project it refers to, when one can be recovered. known is the caller's
// current project list; a literal substring match against it always wins
// over the regex patterns.
func Classify(message string, known []string) Intent {
	lower := strings.ToLower(strings.TrimSpace(message))

	intent := Intent{Action: classifyAction(lower)}

	for _, name := range known {
		if name != "" && strings.Contains(lower, strings.ToLower(name)) {
			intent.Project = name
			return intent
		}
	}

	for _, pat := range projectPatterns {
		if m := pat.FindStringSubmatch(lower); len(m) == 2 && !stopWords[m[1]] {
			intent.Project = m[1]
			return intent
		}
	}

	return intent
}

func classifyAction(lower string) Action {
	switch {
	case containsAny(lower, buildKeywords):
		return ActionBuild
	case containsAny(lower, showKeywords):
		return ActionShow
	case containsAny(lower, updateKeywords):
		return ActionUpdate
	case containsAny(lower, deployKeywords):
		return ActionDeploy
	case containsAny(lower, greetKeywords):
		return ActionGreet
	default:
		return ActionGeneral
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
