// Package tablestore provides an Azure Table Storage implementation of
// store.TaskStore.
//
// Tasks live in a single partition with zero-padded row keys so the
// service's natural (PartitionKey, RowKey) order is ascending ID order. IDs
// come from a sequence entity advanced with ETag-conditioned writes, so two
// creates never share an ID. Task updates and deletes are unconditional:
// concurrent writes to the same task are last-write-wins.
package tablestore
