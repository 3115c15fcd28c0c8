package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// The Optional types distinguish "field not supplied" from "field cleared"
// in PATCH bodies. A zero/empty value is a legitimate write, never an
// implicit skip: Set is false only when the key was absent from the JSON.

type OptionalString struct {
	Value *string
	Set   bool
}

func (o OptionalString) IsZero() bool { return !o.Set }

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.Value = &raw
	return nil
}

type OptionalFloat64 struct {
	Value *float64
	Set   bool
}

func (o OptionalFloat64) IsZero() bool { return !o.Set }

func (o *OptionalFloat64) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var raw float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.Value = &raw
	return nil
}

type OptionalTime struct {
	Value *time.Time
	Set   bool
}

func (o OptionalTime) IsZero() bool { return !o.Set }

func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var raw time.Time
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.Value = &raw
	return nil
}

type OptionalUUID struct {
	Value *uuid.UUID
	Set   bool
}

func (o OptionalUUID) IsZero() bool { return !o.Set }

func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		if raw == "" {
			o.Value = nil
			return nil
		}

		parsed, err := uuid.Parse(raw)
		if err != nil {
			return err
		}

		o.Value = &parsed
		return nil
	}

	var parsed uuid.UUID
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}

	o.Value = &parsed
	return nil
}
