package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"applestore/internal/domain"
)

var (
	reQ     = regexp.MustCompile(`^[\p{L}0-9 _'.+\-]{1,50}$`)
	rePhone = regexp.MustCompile(`^\+?[0-9 \-]{8,20}$`)
	reCat   = regexp.MustCompile(`^[\p{L}0-9 ]{1,30}$`)
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = val.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		_, ok := Phone(fl.Field().String())
		return ok
	})
	_ = val.RegisterValidation("sections", func(fl validator.FieldLevel) bool {
		order, ok := fl.Field().Interface().([]domain.Section)
		return ok && SectionsOrder(order) == nil
	})
	return val
}

// ID parses a positive product id.
func ID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if r := []rune(s); len(r) > 50 {
		s = string(r[:50])
	}
	return s, reQ.MatchString(s)
}

func Category(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reCat.MatchString(s)
}

// Phone accepts international numbers with optional spaces and dashes.
func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePhone.MatchString(s)
}

// Discount must lie strictly between 0 and 100.
func Discount(d float64) error {
	if err := v.Var(d, "gt=0,lt=100"); err != nil {
		return domain.Invalid("discountPercentage", "must be greater than 0 and less than 100")
	}
	return nil
}

func Product(p domain.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if err := invalid(v.Struct(p)); err != nil {
		return err
	}
	if p.IsOnSale {
		if p.Price > *p.OriginalPrice {
			return domain.Invalid("price", "must not exceed the original price while on sale")
		}
		if p.DiscountPercentage != nil {
			return Discount(*p.DiscountPercentage)
		}
	}
	return nil
}

func StoreConfig(c domain.StoreConfig) error {
	c.StoreName = strings.TrimSpace(c.StoreName)
	return invalid(v.Struct(c))
}

// SectionsOrder must be a permutation of every homepage section.
func SectionsOrder(order []domain.Section) error {
	if len(order) != len(domain.AllSections) {
		return domain.Invalid("sectionsOrder", fmt.Sprintf("must list all %d sections", len(domain.AllSections)))
	}
	seen := map[domain.Section]bool{}
	for _, s := range order {
		known := false
		for _, k := range domain.AllSections {
			if s == k {
				known = true
				break
			}
		}
		if !known || seen[s] {
			return domain.Invalid("sectionsOrder", fmt.Sprintf("unexpected or repeated section %q", s))
		}
		seen[s] = true
	}
	return nil
}

// invalid turns the first validator failure into a domain validation error.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	return domain.Invalid(field, message(fe))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "required_if":
		return "required while on sale"
	case "max":
		if fe.Kind() == reflect.String {
			return "too long"
		}
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "gte":
		return "must not be negative"
	case "gt":
		return "must be positive"
	case "oneof":
		return "must be one of " + fe.Param()
	case "unique":
		return "installments listed twice"
	case "phone":
		return "not a phone number"
	case "sections":
		return fmt.Sprintf("must list each of the %d sections once", len(domain.AllSections))
	}
	return "failed " + fe.Tag()
}
