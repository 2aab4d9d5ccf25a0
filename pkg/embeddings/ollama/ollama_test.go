package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/deckmind/deckmind/pkg/embeddings/ollama"
	"github.com/deckmind/deckmind/pkg/vector"
)

var _ = Describe("Embedder", func() {
	Context("when the server returns embeddings", func() {
		It("returns the first embedding vector", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/api/embed"))

				var req map[string]string
				Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
				Expect(req["model"]).To(Equal("all-minilm"))
				Expect(req["input"]).To(Equal("hello world"))

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"embeddings": [[0.1, 0.2, 0.3]]}`))
			}))
			defer srv.Close()

			embedder, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: srv.URL})
			Expect(err).NotTo(HaveOccurred())

			embedding, err := embedder.Embed(context.Background(), "hello world")
			Expect(err).NotTo(HaveOccurred())
			Expect(embedding).To(Equal([]float32{0.1, 0.2, 0.3}))
		})
	})

	Context("when the server errors", func() {
		It("wraps the failure as an embedding error", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer srv.Close()

			embedder, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: srv.URL})
			Expect(err).NotTo(HaveOccurred())

			_, err = embedder.Embed(context.Background(), "hello")
			Expect(err).To(MatchError(vector.ErrEmbedding))
		})
	})

	Context("when the server returns no embeddings", func() {
		It("returns an embedding error", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"embeddings": []}`))
			}))
			defer srv.Close()

			embedder, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: srv.URL})
			Expect(err).NotTo(HaveOccurred())

			_, err = embedder.Embed(context.Background(), "hello")
			Expect(err).To(MatchError(vector.ErrEmbedding))
		})
	})
})
