package milvus_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/deckmind/deckmind/pkg/logger"
	"github.com/deckmind/deckmind/pkg/vector"
	"github.com/deckmind/deckmind/pkg/vector/milvus"
)

// fakeMilvus serves just enough of the Milvus HTTP API v2 for the driver.
func fakeMilvus(handler func(path string, body map[string]any) any) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(handler(r.URL.Path, body))
	}))
}

var okResponse = map[string]any{"code": 0}

var _ = Describe("Driver", func() {
	Describe("NewDriver", func() {
		It("should return an error when URL is empty", func() {
			_, err := milvus.NewDriver(milvus.Config{Dimensions: 4}, logger.Nop())
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("milvus URL is required"))
		})

		It("should return an error when dimensions are zero", func() {
			_, err := milvus.NewDriver(milvus.Config{URL: "http://localhost:19530"}, logger.Nop())
			Expect(err).To(HaveOccurred())
		})

		It("should create the collection when describe reports it missing", func() {
			var createdWith map[string]any
			server := fakeMilvus(func(path string, body map[string]any) any {
				switch path {
				case "/v2/vectordb/collections/describe":
					return map[string]any{"code": 100, "message": "collection not found"}
				case "/v2/vectordb/collections/create":
					createdWith = body
					return okResponse
				}
				return okResponse
			})
			defer server.Close()

			_, err := milvus.NewDriver(milvus.Config{URL: server.URL, Dimensions: 384}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			Expect(createdWith["collectionName"]).To(Equal(milvus.DefaultCollectionName))
			Expect(createdWith["dimension"]).To(BeNumerically("==", 384))
		})
	})

	Describe("Insert", func() {
		It("should return the backend-assigned numeric ID as a string", func() {
			server := fakeMilvus(func(path string, body map[string]any) any {
				if path == "/v2/vectordb/entities/insert" {
					return map[string]any{
						"code": 0,
						"data": map[string]any{"insertCount": 1, "insertIds": []any{float64(4217)}},
					}
				}
				return okResponse
			})
			defer server.Close()

			driver, err := milvus.NewDriver(milvus.Config{URL: server.URL, Dimensions: 4}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())

			id, err := driver.Insert(context.Background(), vector.Record{
				DocumentID: "doc-1",
				PageNumber: 2,
				Content:    "neural networks",
				Embedding:  []float32{0.1, 0.2, 0.3, 0.4},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("4217"))
		})

		It("should surface milvus error codes", func() {
			server := fakeMilvus(func(path string, _ map[string]any) any {
				if path == "/v2/vectordb/entities/insert" {
					return map[string]any{"code": 65535, "message": "quota exceeded"}
				}
				return okResponse
			})
			defer server.Close()

			driver, err := milvus.NewDriver(milvus.Config{URL: server.URL, Dimensions: 4}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())

			_, err = driver.Insert(context.Background(), vector.Record{Embedding: []float32{1, 0, 0, 0}})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("quota exceeded"))
		})
	})

	Describe("Query", func() {
		It("should map rows to records with normalized scores", func() {
			server := fakeMilvus(func(path string, _ map[string]any) any {
				if path == "/v2/vectordb/entities/search" {
					return map[string]any{
						"code": 0,
						"data": []map[string]any{
							{
								"id":          float64(7),
								"distance":    0.0,
								"document_id": "doc-1",
								"page_number": float64(3),
								"title":       "Backprop",
								"content":     "gradient descent",
								"metadata":    `{"document_id":"doc-1"}`,
							},
							{
								"id":          float64(9),
								"distance":    1.0,
								"document_id": "doc-2",
								"page_number": float64(1),
								"content":     "other deck",
							},
						},
					}
				}
				return okResponse
			})
			defer server.Close()

			driver, err := milvus.NewDriver(milvus.Config{URL: server.URL, Dimensions: 4}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())

			results, err := driver.Query(context.Background(), []float32{1, 0, 0, 0}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))

			Expect(results[0].ID).To(Equal("7"))
			Expect(results[0].Content).To(Equal("gradient descent"))
			Expect(results[0].PageNumber).To(Equal(3))
			Expect(results[0].Metadata).To(HaveKeyWithValue("document_id", "doc-1"))
			Expect(results[0].Score).To(BeNumerically("~", 1.0, 1e-6))
			Expect(results[1].Score).To(BeNumerically("~", 0.5, 1e-6))
		})
	})

	Describe("DeleteByDocument", func() {
		It("should issue a filtered delete", func() {
			var filter string
			server := fakeMilvus(func(path string, body map[string]any) any {
				if path == "/v2/vectordb/entities/delete" {
					filter, _ = body["filter"].(string)
				}
				return okResponse
			})
			defer server.Close()

			driver, err := milvus.NewDriver(milvus.Config{URL: server.URL, Dimensions: 4}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())

			Expect(driver.DeleteByDocument(context.Background(), "doc-1")).To(Succeed())
			Expect(filter).To(Equal(`document_id == "doc-1"`))
		})
	})
})
