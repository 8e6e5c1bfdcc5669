package loader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"jjplan/internal/codec"
	"jjplan/internal/domain"
)

// ErrInvalidDataset is matched by every *ValidationError
var ErrInvalidDataset = errors.New("invalid dataset")

// datasetValidate checks the struct tags of codec.Dataset
var datasetValidate *validator.Validate

func init() {
	datasetValidate = validator.New()
	_ = datasetValidate.RegisterValidation("belt", func(fl validator.FieldLevel) bool {
		return domain.Belt(fl.Field().String()).Valid()
	})
	_ = datasetValidate.RegisterValidation("optionkind", func(fl validator.FieldLevel) bool {
		return domain.OptionKind(fl.Field().String()).Valid()
	})
}

// Problem is one defect found in a dataset
type Problem struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return p.Path + ": " + p.Message
}

// ValidationError lists every problem that stopped a dataset from loading
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		lines = append(lines, p.String())
	}
	return fmt.Sprintf("invalid dataset (%d problems): %s", len(e.Problems), strings.Join(lines, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidDataset
}

// Check runs the schema rules and then the integrity pass. The integrity
// pass only runs once the schema is clean, so every reference it follows is
// well formed.
func Check(ds *codec.Dataset) []Problem {
	if ds == nil {
		return []Problem{{Message: "dataset is empty"}}
	}
	if problems := checkSchema(ds); len(problems) > 0 {
		return problems
	}
	return checkIntegrity(ds)
}

func checkSchema(ds *codec.Dataset) []Problem {
	err := datasetValidate.Struct(ds)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Problem{{Message: err.Error()}}
	}

	problems := make([]Problem, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, Problem{
			Path:    strings.TrimPrefix(fe.Namespace(), "Dataset."),
			Message: schemaMessage(fe),
		})
	}
	return problems
}

func schemaMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return "is required for a transition"
	case "excluded_unless":
		return "must be empty unless the option is a transition"
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "belt":
		return fmt.Sprintf("unknown belt %q", fe.Value())
	case "optionkind":
		return fmt.Sprintf("unknown option kind %q", fe.Value())
	default:
		return "failed " + fe.Tag()
	}
}

func checkIntegrity(ds *codec.Dataset) []Problem {
	var problems []Problem
	add := func(path, format string, args ...any) {
		problems = append(problems, Problem{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	defined := make(map[string]bool, len(ds.Positions))
	for i, p := range ds.Positions {
		if defined[p.ID] {
			add(fmt.Sprintf("Positions[%d].ID", i), "duplicate position id %q", p.ID)
			continue
		}
		defined[p.ID] = true
	}

	for _, dangling := range buildGraph(ds).Validate() {
		add("Positions."+dangling.From, "%s", dangling.Error())
	}

	for i, id := range ds.StartPositions {
		if !defined[id] {
			add(fmt.Sprintf("StartPositions[%d]", i), "start position %q is not defined", id)
		}
	}

	for i, c := range ds.Catalog {
		if !defined[c.From] {
			add(fmt.Sprintf("Catalog[%d].From", i), "catalog position %q is not defined", c.From)
		}
	}

	for i, t := range ds.Tips {
		if !defined[t.Position] {
			add(fmt.Sprintf("Tips[%d].Position", i), "tip position %q is not defined", t.Position)
		}
	}

	names := make(map[string]bool, len(ds.TapList))
	for i, r := range ds.TapList {
		if names[r.Name] {
			add(fmt.Sprintf("TapList[%d].Name", i), "duplicate roster entry %q", r.Name)
		}
		names[r.Name] = true
	}

	return problems
}
