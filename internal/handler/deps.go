package handler

import (
	"chatrelay/internal/app/chat"
	"chatrelay/internal/app/identity"
	"chatrelay/internal/configs"
)

// AppDeps bundles the components handlers need. Everything is constructed in
// main and injected; no handler touches ambient state.
type AppDeps struct {
	Config      *configs.AppConfig
	Registry    *chat.Registry
	Topic       *chat.Topic
	Broadcaster *chat.Broadcaster
	Bridge      *chat.Bridge
	Sessions    *identity.SessionStore
	Usernames   *identity.Generator
	History     *chat.History
}

// usernamesInUse merges live-connection usernames with session-held ones so a
// generated name collides with neither.
func usernamesInUse(deps *AppDeps) map[string]struct{} {
	names := deps.Registry.Usernames()
	for name := range deps.Sessions.Usernames() {
		names[name] = struct{}{}
	}
	return names
}
