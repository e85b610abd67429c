package stages

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/jorge-barreto/augmentor/internal/failure"
	"github.com/jorge-barreto/augmentor/internal/state"
)

// Augmentation is the augmentor's verdict: either a refined prompt or a set
// of questions for the user.
type Augmentation interface {
	Delta() state.Delta
}

// Refined carries the rewritten prompt.
type Refined struct {
	Text string
}

func (r Refined) Delta() state.Delta { return state.Refined(r.Text) }

// NeedsClarification carries the questions the model asked instead.
type NeedsClarification struct {
	Questions []string
}

func (n NeedsClarification) Delta() state.Delta { return state.Questions(n.Questions) }

// ParseAugmentation classifies a raw augmentor response. Text opening with
// "{" must be a JSON object; its "questions" list (possibly empty) is
// returned. Anything else is the refined prompt, verbatim.
func ParseAugmentation(text string) (Augmentation, error) {
	if !strings.HasPrefix(strings.TrimLeftFunc(text, unicode.IsSpace), "{") {
		return Refined{Text: text}, nil
	}
	var body struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(strings.TrimFunc(text, unicode.IsSpace)), &body); err != nil {
		return nil, &failure.ParseError{Err: err}
	}
	if body.Questions == nil {
		body.Questions = []string{}
	}
	return NeedsClarification{Questions: body.Questions}, nil
}
