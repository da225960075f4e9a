// Package repositories implements SQLite persistence for local client state.
//
// Key Implementations:
//   - [SettingsRepository] : string key/value records in the settings table
//   - [TokenStore] : the cached authorization token, stored as two settings keys
//   - [HistoryRepository] : tracks selected in the player, newest last
//
// Expired or unreadable tokens are cleared on read, so callers only ever see a
// usable token or nil.
package repositories
