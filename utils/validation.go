/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// use a single instance, it caches struct info
var (
	uni      *ut.UniversalTranslator
	validate *validator.Validate
	trans    ut.Translator

	// account short names are lowercase letters, digits and dashes
	accountNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
)

func translateError(err error) []string {
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []string{err.Error()}
	}

	errs := make([]string, 0, len(validatorErrs))
	for _, e := range validatorErrs {
		errs = append(errs, e.Translate(trans))
	}

	return errs
}

// Validate runs struct tag validation and joins the translated messages
func Validate[T any](structure T) error {
	if err := validate.Struct(structure); err != nil {
		return errors.New(strings.Join(translateError(err), "; "))
	}

	return nil
}

func init() {
	english := en.New()
	uni = ut.New(english, english)
	trans, _ = uni.GetTranslator("en")

	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		}

		if name == "-" || name == "" {
			return fld.Name
		}

		return name
	})

	if err := validate.RegisterValidation("accountname", func(fl validator.FieldLevel) bool {
		return accountNameRegex.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(err)
	}

	err := validate.RegisterTranslation("accountname", trans, func(ut ut.Translator) error {
		return ut.Add("accountname", "{0} must be the account short name (lowercase letters, digits and dashes)", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("accountname", fe.Field())
		return t
	})
	if err != nil {
		panic(err)
	}
}
