package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
)

// Question is one trivia item from the static source: a fact with a blank,
// the real answer, accepted alternate spellings, and pre-authored decoys used
// to pad the vote list.
type Question struct {
	ID               int      `json:"id"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	Answer           string   `json:"answer"`
	AlternateAnswers []string `json:"alternateAnswers"`
	Decoys           []string `json:"decoys,omitempty"`
}

//go:embed data/questions.json
var questionData []byte

func loadQuestionBank() ([]Question, error) {
	var bank []Question
	if err := json.Unmarshal(questionData, &bank); err != nil {
		return nil, fmt.Errorf("parsing embedded question bank: %w", err)
	}
	if len(bank) == 0 {
		return nil, fmt.Errorf("embedded question bank is empty")
	}
	return bank, nil
}

// newQuestionPool copies the bank into a shuffled, duplicate-free pool for a
// single room. Questions are consumed from the pool without replacement.
func newQuestionPool(bank []Question) []Question {
	seen := make(map[int]bool, len(bank))
	pool := make([]Question, 0, len(bank))
	for _, q := range bank {
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		pool = append(pool, q)
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	return pool
}

// poolCategories returns up to n distinct categories still represented in
// the pool, in random order.
func poolCategories(pool []Question, n int) []string {
	seen := make(map[string]bool)
	categories := make([]string, 0, n)
	for _, q := range pool {
		if seen[q.Category] {
			continue
		}
		seen[q.Category] = true
		categories = append(categories, q.Category)
	}

	rand.Shuffle(len(categories), func(i, j int) {
		categories[i], categories[j] = categories[j], categories[i]
	})

	if len(categories) > n {
		categories = categories[:n]
	}
	return categories
}

// takeQuestion removes and returns a question matching the category. When
// the category is exhausted mid-round it falls back to an arbitrary
// remaining question; ok is false only if the pool is empty.
func takeQuestion(pool []Question, category string) (q Question, rest []Question, ok bool) {
	if len(pool) == 0 {
		return Question{}, pool, false
	}

	idx := 0
	for i, candidate := range pool {
		if candidate.Category == category {
			idx = i
			break
		}
	}

	q = pool[idx]
	rest = append(pool[:idx:idx], pool[idx+1:]...)
	return q, rest, true
}
