// Package confloader loads configuration from layered sources.
//
// It uses koanf with the priority: flags > environment > file >
// defaults. A companion fsnotify watcher triggers reloads when the
// configuration file changes.
package confloader
