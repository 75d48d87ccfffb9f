package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/TheOgre365/equip-track/internal/application"
)

type idParams struct {
	ID uint `json:"id"`
}

func assetPath(id uint) string {
	return "/api/assets/" + strconv.FormatUint(uint64(id), 10)
}

func employeePath(id uint) string {
	return "/api/employees/" + strconv.FormatUint(uint64(id), 10)
}

func doAssetsList(ctx context.Context, cfg cliConfig, out any) error {
	ep := endpoint{rpcMethod: "assets.list", verb: http.MethodGet, path: "/api/assets", list: true}
	return connect(cfg).invoke(ctx, ep, nil, out)
}

func doAssetsGet(ctx context.Context, cfg cliConfig, id uint, out any) error {
	ep := endpoint{rpcMethod: "assets.get", verb: http.MethodGet, path: assetPath(id)}
	return connect(cfg).invoke(ctx, ep, idParams{ID: id}, out)
}

func doAssetsHistory(ctx context.Context, cfg cliConfig, id uint, out any) error {
	ep := endpoint{rpcMethod: "assets.history", verb: http.MethodGet, path: assetPath(id) + "/history", list: true}
	return connect(cfg).invoke(ctx, ep, idParams{ID: id}, out)
}

// doAssetsSave creates when form.ID is zero and replaces the row otherwise.
func doAssetsSave(ctx context.Context, cfg cliConfig, form application.AssetForm, out any) error {
	ep := endpoint{rpcMethod: "assets.save", verb: http.MethodPost, path: "/api/assets", body: true}
	if form.ID != 0 {
		ep.verb, ep.path = http.MethodPut, assetPath(form.ID)
	}
	return connect(cfg).invoke(ctx, ep, form, out)
}

func doAssetsDelete(ctx context.Context, cfg cliConfig, id uint) error {
	ep := endpoint{rpcMethod: "assets.delete", verb: http.MethodDelete, path: assetPath(id)}
	return connect(cfg).invoke(ctx, ep, idParams{ID: id}, nil)
}

// doAssetsAction runs checkin or maintenance.
func doAssetsAction(ctx context.Context, cfg cliConfig, action string, id uint, out any) error {
	ep := endpoint{rpcMethod: "assets." + action, verb: http.MethodPost, path: assetPath(id) + "/" + action}
	return connect(cfg).invoke(ctx, ep, idParams{ID: id}, out)
}

func doEmployeesList(ctx context.Context, cfg cliConfig, out any) error {
	ep := endpoint{rpcMethod: "employees.list", verb: http.MethodGet, path: "/api/employees", list: true}
	return connect(cfg).invoke(ctx, ep, nil, out)
}

func doEmployeesDirectory(ctx context.Context, cfg cliConfig, out any) error {
	ep := endpoint{rpcMethod: "employees.directory", verb: http.MethodGet, path: "/api/directory", list: true}
	return connect(cfg).invoke(ctx, ep, nil, out)
}

func doEmployeesSave(ctx context.Context, cfg cliConfig, form application.EmployeeForm, out any) error {
	ep := endpoint{rpcMethod: "employees.save", verb: http.MethodPost, path: "/api/employees", body: true}
	if form.ID != 0 {
		ep.verb, ep.path = http.MethodPut, employeePath(form.ID)
	}
	return connect(cfg).invoke(ctx, ep, form, out)
}

func doEmployeesDelete(ctx context.Context, cfg cliConfig, id uint) error {
	ep := endpoint{rpcMethod: "employees.delete", verb: http.MethodDelete, path: employeePath(id)}
	return connect(cfg).invoke(ctx, ep, idParams{ID: id}, nil)
}
