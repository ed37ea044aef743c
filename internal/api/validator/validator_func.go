package validator

import (
	"regexp"

	"github.com/Behyna/subscription-engine/internal/model"
	"github.com/go-playground/validator/v10"
)

const (
	msisdnRegex = `^(\+?250|0)?7[2389]\d{7}$`
)

const (
	MSISDNTag         = "msisdn"
	ServiceTag        = "service"
	TerminalStatusTag = "terminal_status"
)

var msisdnPattern = regexp.MustCompile(msisdnRegex)

var valid = map[string]func(fl validator.FieldLevel) bool{
	MSISDNTag:         ValidateMSISDN,
	ServiceTag:        ValidateService,
	TerminalStatusTag: ValidateTerminalStatus,
}

// ValidateMSISDN accepts Rwandan MTN and Airtel mobile numbers.
func ValidateMSISDN(fl validator.FieldLevel) bool {
	return msisdnPattern.MatchString(fl.Field().String())
}

func ValidateService(fl validator.FieldLevel) bool {
	return model.Service(fl.Field().String()).Valid()
}

func ValidateTerminalStatus(fl validator.FieldLevel) bool {
	return model.TransactionStatus(fl.Field().String()).IsTerminal()
}
