// Package watcher follows the alarm through the status API and logs every
// transition it observes.
package watcher
