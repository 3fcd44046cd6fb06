// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package validation normalizes and checks documents before they are written.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xmidt-org/folio/model"
	"github.com/xmidt-org/folio/store"
)

var errNoSchema = errors.New("no schema for resource type")

// Validator turns a raw document into one that is safe to store.
type Validator interface {
	Validate(raw model.Document) (model.Document, error)
}

// Func adapts a function to a Validator.
type Func func(model.Document) (model.Document, error)

func (f Func) Validate(raw model.Document) (model.Document, error) {
	return f(raw)
}

// identity checks an id that becomes a file name.
type identity struct {
	ID string `validate:"required,max=200,excludesall=/\\,ne=.,ne=.."`
}

type postmanFields struct {
	ConfigType string `validate:"omitempty,oneof=collection environment configuration collections environments configurations"`
}

type schemaValidator struct {
	schema   model.Schema
	validate *validator.Validate
}

// New returns the default validator of t: a trimmed copy of the document with
// a usable id.
func New(t model.ResourceType) (Validator, error) {
	schema, ok := model.SchemaFor(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errNoSchema, t)
	}
	return &schemaValidator{
		schema:   schema,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

func (v *schemaValidator) Validate(raw model.Document) (model.Document, error) {
	doc := trim(raw)
	id, ok := doc[v.schema.IDField].(string)
	if _, present := doc[v.schema.IDField]; present && !ok {
		return nil, v.invalid(fmt.Errorf("%s must be a string", v.schema.IDField))
	}
	if err := v.validate.Struct(identity{ID: id}); err != nil {
		return nil, v.invalid(describe(v.schema.IDField, err))
	}
	if v.schema.Type == model.Postman {
		ct, _ := doc["config_type"].(string)
		if err := v.validate.Struct(postmanFields{ConfigType: ct}); err != nil {
			return nil, v.invalid(describe("config_type", err))
		}
	}
	return doc, nil
}

func (v *schemaValidator) invalid(err error) error {
	return &store.Error{Kind: store.KindInvalid, Op: "validate", Key: string(v.schema.Type), Err: err}
}

// describe renders validator errors against the document's field name.
func describe(field string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s is longer than %s characters", field, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is not a valid identifier", field))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// trim copies raw with surrounding whitespace removed from top level strings.
func trim(raw model.Document) model.Document {
	doc := make(model.Document, len(raw))
	for k, val := range raw {
		if s, ok := val.(string); ok {
			val = strings.TrimSpace(s)
		}
		doc[k] = val
	}
	return doc
}

// Set holds one validator per resource type.
type Set map[model.ResourceType]Validator

// Defaults returns the default validator of every resource type.
func Defaults() Set {
	s := Set{}
	for _, t := range model.ResourceTypes() {
		v, err := New(t)
		if err == nil {
			s[t] = v
		}
	}
	return s
}

// Validate runs t's validator. Types without one pass through unchanged.
func (s Set) Validate(t model.ResourceType, raw model.Document) (model.Document, error) {
	v, ok := s[t]
	if !ok {
		return raw, nil
	}
	return v.Validate(raw)
}
