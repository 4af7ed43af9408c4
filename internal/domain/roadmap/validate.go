package roadmap

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/yanqian/learnmate/pkg/errors"
)

const (
	maxSubjects     = 50
	maxListItems    = 50
	maxStringLength = 5000
)

var profileValidator = newProfileValidator()

func newProfileValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		value := fl.Field().Float()
		return !math.IsNaN(value) && !math.IsInf(value, 0)
	})
	return v
}

// Validate fails fast on the first malformed field of the profile. The returned
// error is an invalid_input AppError naming the field or subject.
func (p LearnerProfile) Validate() error {
	if err := profileValidator.Struct(p); err != nil {
		return translateValidation(err)
	}
	if len(p.Scores) > maxSubjects {
		return invalid("performance", fmt.Sprintf("at most %d subjects are accepted", maxSubjects))
	}
	for _, entry := range p.Scores {
		field := "performance." + entry.Subject
		if strings.TrimSpace(entry.Subject) == "" {
			return invalid("performance", "subject names cannot be blank")
		}
		if len(entry.Subject) > maxStringLength {
			return invalid("performance", "subject name too long")
		}
		if err := profileValidator.Var(entry.Score, "finite,gte=0,lte=100"); err != nil {
			return invalid(field, "score must be a finite number between 0 and 100")
		}
	}
	if err := checkList("interests", p.Interests); err != nil {
		return err
	}
	if err := checkList("knownSkills", p.KnownSkills); err != nil {
		return err
	}
	if len(p.TargetCareer) > maxStringLength {
		return invalid("targetCareer", "value too long")
	}
	return nil
}

func checkList(field string, values []string) error {
	if len(values) > maxListItems {
		return invalid(field, fmt.Sprintf("at most %d items are accepted", maxListItems))
	}
	for _, v := range values {
		if len(v) > maxStringLength {
			return invalid(field, "item too long")
		}
	}
	return nil
}

func translateValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "invalid profile", err)
	}
	fe := verrs[0]
	switch fe.Field() {
	case "semester":
		return invalid("semester", "semester must be between 1 and 8")
	case "timeAvailable":
		return invalid("timeAvailable", "weekly hours must be a non-negative number")
	default:
		return invalid(fe.Field(), fmt.Sprintf("failed %q check", fe.Tag()))
	}
}

func invalid(field, message string) error {
	return apperrors.WrapField(apperrors.CodeInvalidInput, field, message, nil)
}

// normalizeInterests trims interests and drops blanks.
func normalizeInterests(interests []string) []string {
	out := make([]string, 0, len(interests))
	for _, interest := range interests {
		if interest = strings.TrimSpace(interest); interest != "" {
			out = append(out, interest)
		}
	}
	return out
}
