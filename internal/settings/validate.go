package settings

import (
	"errors"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"votd/internal/verse"
)

// rgbHex is stricter than validator's built-in hexcolor, which also accepts #RGB and #RRGGBBAA.
var rgbHex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so errors line up with the stored record.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("translation", func(fl validator.FieldLevel) bool {
		switch verse.Translation(fl.Field().String()) {
		case verse.KJV, verse.ASV, verse.WEB:
			return true
		}
		return false
	})
	_ = v.RegisterValidation("rgbhex", func(fl validator.FieldLevel) bool {
		return rgbHex.MatchString(fl.Field().String())
	})
	return v
}

func ValidTranslation(code string) bool {
	return validate.Var(code, "translation") == nil
}

func ValidTheme(mode string) bool {
	return validate.Var(mode, "oneof=light dark system") == nil
}

func ValidAccent(color string) bool {
	return validate.Var(color, "rgbhex") == nil
}

// ValidFontSize reports whether n is an integer in [MinFontSize, MaxFontSize].
func ValidFontSize(n float64) bool {
	if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
		return false
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return false
	}
	return validate.Var(int(n), "min=12,max=32") == nil
}

// Validate checks a typed record and reports every field outside its domain.
func Validate(s Settings) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Value: fe.Value()})
	}
	return out
}
