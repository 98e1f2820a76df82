package employee

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const minPhoneDigits = 10

var (
	mailboxPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+$`)
	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
	recordValidator = newRecordValidator()
)

// recordShape は保存前に検査するフィールドの形です。
type recordShape struct {
	Name     string  `validate:"required"`
	Email    string  `validate:"required,mailbox"`
	Phone    string  `validate:"required,phone"`
	JobTitle string  `validate:"required"`
	Salary   float64 `validate:"gte=0"`
}

var fieldErrors = map[string]error{
	"Name":     ErrInvalidName,
	"Email":    ErrInvalidEmail,
	"Phone":    ErrInvalidPhone,
	"JobTitle": ErrInvalidJobTitle,
	"Salary":   ErrInvalidSalary,
}

func newRecordValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return mailboxPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// IsValidPhone は区切り文字を除いた桁数が 10 以上の電話番号かを判定します。
func IsValidPhone(raw string) bool {
	digits := strings.TrimPrefix(strings.TrimSpace(raw), "+")
	digits = phoneSeparators.Replace(digits)
	if len(digits) < minPhoneDigits {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validateRecord(e *Employee) error {
	err := recordValidator.Struct(recordShape{
		Name:     e.Name,
		Email:    e.Email,
		Phone:    e.Phone,
		JobTitle: e.JobTitle,
		Salary:   e.Salary,
	})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if sentinel, ok := fieldErrors[fe.Field()]; ok {
			errs = append(errs, sentinel)
		}
	}
	return errors.Join(errs...)
}
