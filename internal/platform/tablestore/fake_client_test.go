package tablestore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
)

type storedEntity struct {
	value []byte
	etag  azcore.ETag
}

// fakeTable is an in-memory TableClient with Table Storage's ETag semantics.
type fakeTable struct {
	mu       sync.Mutex
	created  bool
	entities map[string]storedEntity
	version  int

	// errs holds one-shot errors keyed by method name.
	errs map[string]error
}

func newFakeTable() *fakeTable {
	return &fakeTable{
		entities: make(map[string]storedEntity),
		errs:     make(map[string]error),
	}
}

var _ TableClient = (*fakeTable)(nil)

func responseError(status int, code string) error {
	req, _ := http.NewRequest(http.MethodGet, "https://fake.table.core.windows.net/tasks", nil)
	return &azcore.ResponseError{
		ErrorCode:  code,
		StatusCode: status,
		RawResponse: &http.Response{
			StatusCode: status,
			Status:     http.StatusText(status),
			Header:     http.Header{},
			Body:       http.NoBody,
			Request:    req,
		},
	}
}

func entityKey(pk, rk string) string { return pk + "|" + rk }

func (f *fakeTable) failWith(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[method] = err
}

func (f *fakeTable) takeErr(method string) error {
	err := f.errs[method]
	delete(f.errs, method)
	return err
}

func (f *fakeTable) nextETag() azcore.ETag {
	f.version++
	return azcore.ETag(fmt.Sprintf("W/\"%d\"", f.version))
}

func keysOf(entity []byte) (string, string, error) {
	var keys struct {
		PartitionKey string `json:"PartitionKey"`
		RowKey       string `json:"RowKey"`
	}
	if err := json.Unmarshal(entity, &keys); err != nil {
		return "", "", err
	}
	return keys.PartitionKey, keys.RowKey, nil
}

func etagMatches(opt *azcore.ETag, current azcore.ETag) bool {
	return opt == nil || *opt == azcore.ETagAny || *opt == current
}

func (f *fakeTable) CreateTable(
	ctx context.Context,
	options *aztables.CreateTableOptions,
) (aztables.CreateTableResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr("CreateTable"); err != nil {
		return aztables.CreateTableResponse{}, err
	}
	if f.created {
		return aztables.CreateTableResponse{}, responseError(http.StatusConflict, string(aztables.TableAlreadyExists))
	}
	f.created = true
	return aztables.CreateTableResponse{}, nil
}

func (f *fakeTable) GetEntity(
	ctx context.Context,
	partitionKey, rowKey string,
	options *aztables.GetEntityOptions,
) (aztables.GetEntityResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr("GetEntity"); err != nil {
		return aztables.GetEntityResponse{}, err
	}
	e, ok := f.entities[entityKey(partitionKey, rowKey)]
	if !ok {
		return aztables.GetEntityResponse{}, responseError(http.StatusNotFound, "ResourceNotFound")
	}
	return aztables.GetEntityResponse{ETag: e.etag, Value: append([]byte(nil), e.value...)}, nil
}

func (f *fakeTable) AddEntity(
	ctx context.Context,
	entity []byte,
	options *aztables.AddEntityOptions,
) (aztables.AddEntityResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr("AddEntity"); err != nil {
		return aztables.AddEntityResponse{}, err
	}
	pk, rk, err := keysOf(entity)
	if err != nil {
		return aztables.AddEntityResponse{}, responseError(http.StatusBadRequest, "InvalidInput")
	}
	key := entityKey(pk, rk)
	if _, exists := f.entities[key]; exists {
		return aztables.AddEntityResponse{}, responseError(http.StatusConflict, "EntityAlreadyExists")
	}
	etag := f.nextETag()
	f.entities[key] = storedEntity{value: append([]byte(nil), entity...), etag: etag}
	return aztables.AddEntityResponse{ETag: etag, Value: entity}, nil
}

func (f *fakeTable) UpdateEntity(
	ctx context.Context,
	entity []byte,
	options *aztables.UpdateEntityOptions,
) (aztables.UpdateEntityResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr("UpdateEntity"); err != nil {
		return aztables.UpdateEntityResponse{}, err
	}
	pk, rk, err := keysOf(entity)
	if err != nil {
		return aztables.UpdateEntityResponse{}, responseError(http.StatusBadRequest, "InvalidInput")
	}
	key := entityKey(pk, rk)
	current, ok := f.entities[key]
	if !ok {
		return aztables.UpdateEntityResponse{}, responseError(http.StatusNotFound, "ResourceNotFound")
	}

	var ifMatch *azcore.ETag
	if options != nil {
		ifMatch = options.IfMatch
	}
	if !etagMatches(ifMatch, current.etag) {
		return aztables.UpdateEntityResponse{}, responseError(http.StatusPreconditionFailed, "UpdateConditionNotSatisfied")
	}

	etag := f.nextETag()
	f.entities[key] = storedEntity{value: append([]byte(nil), entity...), etag: etag}
	return aztables.UpdateEntityResponse{ETag: etag}, nil
}

func (f *fakeTable) DeleteEntity(
	ctx context.Context,
	partitionKey, rowKey string,
	options *aztables.DeleteEntityOptions,
) (aztables.DeleteEntityResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr("DeleteEntity"); err != nil {
		return aztables.DeleteEntityResponse{}, err
	}
	key := entityKey(partitionKey, rowKey)
	current, ok := f.entities[key]
	if !ok {
		return aztables.DeleteEntityResponse{}, responseError(http.StatusNotFound, "ResourceNotFound")
	}

	var ifMatch *azcore.ETag
	if options != nil {
		ifMatch = options.IfMatch
	}
	if !etagMatches(ifMatch, current.etag) {
		return aztables.DeleteEntityResponse{}, responseError(http.StatusPreconditionFailed, "UpdateConditionNotSatisfied")
	}
	delete(f.entities, key)
	return aztables.DeleteEntityResponse{}, nil
}

// NewListEntitiesPager honours filters of the form "PartitionKey eq 'x'" and
// returns entities in (PartitionKey, RowKey) order, in one page.
func (f *fakeTable) NewListEntitiesPager(
	options *aztables.ListEntitiesOptions,
) *runtime.Pager[aztables.ListEntitiesResponse] {
	partition := ""
	if options != nil && options.Filter != nil {
		partition = strings.Trim(strings.TrimPrefix(*options.Filter, "PartitionKey eq "), "'")
	}

	return runtime.NewPager(runtime.PagingHandler[aztables.ListEntitiesResponse]{
		More: func(aztables.ListEntitiesResponse) bool { return false },
		Fetcher: func(ctx context.Context, _ *aztables.ListEntitiesResponse) (aztables.ListEntitiesResponse, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			if err := f.takeErr("ListEntities"); err != nil {
				return aztables.ListEntitiesResponse{}, err
			}

			keys := make([]string, 0, len(f.entities))
			for k := range f.entities {
				if partition == "" || strings.HasPrefix(k, partition+"|") {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)

			resp := aztables.ListEntitiesResponse{}
			for _, k := range keys {
				resp.Entities = append(resp.Entities, append([]byte(nil), f.entities[k].value...))
			}
			return resp, nil
		},
	})
}
