package handler

import (
	"meetassist/internal/app/gateway"
	"meetassist/internal/app/meeting"
	"meetassist/internal/app/store"
	"meetassist/internal/configs"
)

// AppDeps carries everything the HTTP handlers need.
type AppDeps struct {
	Config   *configs.AppConfig
	Store    *store.Store
	Meetings *meeting.Service
	Gateway  *gateway.Gateway
}
