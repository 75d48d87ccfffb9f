package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/TheOgre365/equip-track/internal/application"
	"github.com/TheOgre365/equip-track/internal/domain"
	"github.com/qri-io/jsonschema"
)

//go:embed import.schema.json
var importSchemaJSON []byte

type importBatch struct {
	Employees []application.EmployeeForm `json:"employees"`
	Assets    []application.AssetForm    `json:"assets"`
}

type importResult struct {
	Employees int
	Assets    int
}

func importSchema() (*jsonschema.Schema, error) {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(importSchemaJSON, rs); err != nil {
		return nil, fmt.Errorf("compile import schema: %w", err)
	}
	return rs, nil
}

// parseImport validates data against the import schema and decodes it.
// Every schema violation is reported, not just the first.
func parseImport(ctx context.Context, data []byte) (importBatch, error) {
	schema, err := importSchema()
	if err != nil {
		return importBatch{}, err
	}
	verrs, err := schema.ValidateBytes(ctx, data)
	if err != nil {
		return importBatch{}, fmt.Errorf("read import file: %w", err)
	}
	if len(verrs) > 0 {
		msgs := make([]string, 0, len(verrs))
		for _, v := range verrs {
			msgs = append(msgs, v.Error())
		}
		return importBatch{}, fmt.Errorf("invalid import file: %s", strings.Join(msgs, "; "))
	}

	var batch importBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return importBatch{}, err
	}
	return batch, nil
}

// runImport saves employees first so assets can reference them by name.
// Employees whose full name already exists are skipped; assets are always
// created new.
func runImport(ctx context.Context, cfg cliConfig, batch importBatch) (importResult, error) {
	var existing []domain.Employee
	if err := doEmployeesList(ctx, cfg, &existing); err != nil {
		return importResult{}, err
	}
	known := make(map[string]bool, len(existing))
	for _, e := range existing {
		known[e.FullName] = true
	}

	var res importResult
	var errs []error
	for _, form := range batch.Employees {
		if known[form.FullName] {
			continue
		}
		form.ID = 0
		if err := doEmployeesSave(ctx, cfg, form, nil); err != nil {
			errs = append(errs, fmt.Errorf("employee %q: %w", form.FullName, err))
			continue
		}
		known[form.FullName] = true
		res.Employees++
	}
	for _, form := range batch.Assets {
		form.ID = 0
		if err := doAssetsSave(ctx, cfg, form, nil); err != nil {
			errs = append(errs, fmt.Errorf("asset %q: %w", form.Name, err))
			continue
		}
		res.Assets++
	}
	return res, errors.Join(errs...)
}
