package milvus

// Request/response shapes for the Milvus HTTP API v2
// (POST {base}/v2/vectordb/...). Only the fields deckmind touches.

type createCollectionRequest struct {
	CollectionName string `json:"collectionName"`
	Dimension      uint   `json:"dimension"`
	MetricType     string `json:"metricType,omitempty"`
}

type describeCollectionRequest struct {
	CollectionName string `json:"collectionName"`
}

type insertRequest struct {
	CollectionName string           `json:"collectionName"`
	Data           []map[string]any `json:"data"`
}

type insertResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"message,omitempty"`
	Data struct {
		InsertCount int   `json:"insertCount"`
		InsertIDs   []any `json:"insertIds"`
	} `json:"data"`
}

type searchRequest struct {
	CollectionName string      `json:"collectionName"`
	Data           [][]float32 `json:"data"`
	Limit          int         `json:"limit"`
	OutputFields   []string    `json:"outputFields"`
}

type searchResponse struct {
	Code int              `json:"code"`
	Msg  string           `json:"message,omitempty"`
	Data []map[string]any `json:"data"`
}

type deleteRequest struct {
	CollectionName string `json:"collectionName"`
	Filter         string `json:"filter"`
}

type baseResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"message,omitempty"`
}
