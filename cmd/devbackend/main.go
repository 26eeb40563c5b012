// Command devbackend is an in-memory stand-in for the hosted backend,
// serving the directory, conversation and message surfaces the client
// expects. For local development only: nothing survives a restart.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"sealchat/internal/domain"
)

type memoryStore struct {
	mu            sync.RWMutex
	directory     map[string]domain.PublicKeyRecord // scope|user
	conversations map[domain.ConversationID]domain.Conversation
	messages      map[domain.ConversationID][]domain.Message
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		directory:     make(map[string]domain.PublicKeyRecord),
		conversations: make(map[domain.ConversationID]domain.Conversation),
		messages:      make(map[domain.ConversationID][]domain.Message),
	}
}

func dirKey(scope domain.Scope, user domain.UserID) string {
	return scope.String() + "|" + user.String()
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	ms := newMemoryStore()
	r := mux.NewRouter()

	r.HandleFunc("/directory", func(w http.ResponseWriter, req *http.Request) {
		var rec domain.PublicKeyRecord
		if err := json.NewDecoder(req.Body).Decode(&rec); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ms.mu.Lock()
		defer ms.mu.Unlock()
		key := dirKey(rec.Scope, rec.UserID)
		if _, exists := ms.directory[key]; exists {
			// One current record per (user, scope); no rotation modeled.
			http.Error(w, "record exists", http.StatusConflict)
			return
		}
		ms.directory[key] = rec
		log.Println("directory: published key for", rec.UserID)
		w.WriteHeader(http.StatusCreated)
	}).Methods(http.MethodPost)

	r.HandleFunc("/directory/{scope}/{user}", func(w http.ResponseWriter, req *http.Request) {
		vars := mux.Vars(req)
		ms.mu.RLock()
		rec, ok := ms.directory[dirKey(domain.Scope(vars["scope"]), domain.UserID(vars["user"]))]
		ms.mu.RUnlock()
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(rec)
	}).Methods(http.MethodGet)

	r.HandleFunc("/conversations", func(w http.ResponseWriter, req *http.Request) {
		var conv domain.Conversation
		if err := json.NewDecoder(req.Body).Decode(&conv); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if conv.ID == "" {
			conv.ID = domain.ConversationID(uuid.NewString())
		}
		ms.mu.Lock()
		ms.conversations[conv.ID] = conv
		ms.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(conv)
	}).Methods(http.MethodPost)

	r.HandleFunc("/conversations/{id}", func(w http.ResponseWriter, req *http.Request) {
		ms.mu.RLock()
		conv, ok := ms.conversations[domain.ConversationID(mux.Vars(req)["id"])]
		ms.mu.RUnlock()
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(conv)
	}).Methods(http.MethodGet)

	r.HandleFunc("/conversations/{id}/keywraps", func(w http.ResponseWriter, req *http.Request) {
		id := domain.ConversationID(mux.Vars(req)["id"])
		var body struct {
			Participants []domain.UserID `json:"participants"`
			KeyWraps     domain.KeyWraps `json:"keyWraps"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ms.mu.Lock()
		defer ms.mu.Unlock()
		conv, ok := ms.conversations[id]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		conv.Participants = body.Participants
		conv.KeyWraps = body.KeyWraps
		ms.conversations[id] = conv
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodPost)

	r.HandleFunc("/messages", func(w http.ResponseWriter, req *http.Request) {
		var msg domain.Message
		if err := json.NewDecoder(req.Body).Decode(&msg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if msg.ID == "" {
			msg.ID = domain.MessageID(uuid.NewString())
		}
		ms.mu.Lock()
		ms.messages[msg.ConversationID] = append(ms.messages[msg.ConversationID], msg)
		ms.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}).Methods(http.MethodPost)

	r.HandleFunc("/conversations/{id}/messages", func(w http.ResponseWriter, req *http.Request) {
		id := domain.ConversationID(mux.Vars(req)["id"])
		limit := 0
		if v := req.URL.Query().Get("limit"); v != "" {
			limit, _ = strconv.Atoi(v)
		}
		ms.mu.RLock()
		msgs := ms.messages[id]
		if limit > 0 && limit < len(msgs) {
			msgs = msgs[len(msgs)-limit:]
		}
		out := append([]domain.Message(nil), msgs...)
		ms.mu.RUnlock()
		_ = json.NewEncoder(w).Encode(out)
	}).Methods(http.MethodGet)

	log.Println("devbackend listening on", *addr)
	log.Fatal(http.ListenAndServe(*addr, r))
}
