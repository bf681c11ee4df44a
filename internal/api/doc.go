// Package api exposes the task service over HTTP. Handlers decode requests,
// call service.TaskService and translate each result or error into a status
// code and JSON body. Error bodies only ever carry fixed, client-safe text.
package api
