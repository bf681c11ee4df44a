// Package domain contains the task entity, its status enumeration and the
// validation rules that decide what a task and a partial update may look like.
// It has no knowledge of HTTP or of any particular storage backend.
package domain
