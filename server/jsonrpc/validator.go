package jsonrpc

import (
	"reflect"
	"regexp"

	"gopkg.in/go-playground/validator.v9"
)

var (
	addressRegex   = regexp.MustCompile("^0x[0-9a-fA-F]{40}$")
	hexIntRegex    = regexp.MustCompile("^0x(0|[1-9a-f][0-9a-f]*)$")
	hashRegex      = regexp.MustCompile("^0x[0-9a-f]{64}$")
	signatureRegex = regexp.MustCompile("^0x[0-9a-fA-F]{130}$")
)

type Validator struct {
	validator *validator.Validate
}

func NewValidator() *Validator {
	v := &Validator{
		validator: validator.New(),
	}

	v.RegisterAlias("optional", "omitempty")

	v.RegisterValidation("version", isJsonRpcVersion)
	v.RegisterValidation("id", isValidIdType)

	v.RegisterValidation("t_addr", isAddress)
	v.RegisterValidation("t_int", isHexInt)
	v.RegisterValidation("t_hash", isHash)
	v.RegisterValidation("t_sig", isSignature)

	return v
}

func (v *Validator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func (v *Validator) RegisterValidation(tag string, fn validator.Func) {
	_ = v.validator.RegisterValidation(tag, fn)
}

func (v *Validator) RegisterStructValidation(fn validator.StructLevelFunc, types ...interface{}) {
	v.validator.RegisterStructValidation(fn, types...)
}

func (v *Validator) RegisterAlias(alias string, tags string) {
	v.validator.RegisterAlias(alias, tags)
}

func isJsonRpcVersion(fl validator.FieldLevel) bool {
	return fl.Field().String() == Version
}

func isValidIdType(fl validator.FieldLevel) bool {
	k := fl.Field().Kind()
	return k != reflect.Bool && k != reflect.Array && k != reflect.Map
}

func isAddress(fl validator.FieldLevel) bool {
	return addressRegex.MatchString(fl.Field().String())
}

func isHexInt(fl validator.FieldLevel) bool {
	return hexIntRegex.MatchString(fl.Field().String())
}

func isHash(fl validator.FieldLevel) bool {
	return hashRegex.MatchString(fl.Field().String())
}

func isSignature(fl validator.FieldLevel) bool {
	return signatureRegex.MatchString(fl.Field().String())
}
