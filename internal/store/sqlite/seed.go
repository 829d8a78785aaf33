package sqlite

import (
	"context"
	"fmt"
)

// starterBlocks are installed when the database is empty, so a fresh server
// has something to open a room on.
var starterBlocks = []struct {
	title    string
	template string
	solution string
}{
	{
		title:    "Async case",
		template: "async function fetchUser(id) {\n  // fetch /users/:id and return the parsed body\n}\n",
		solution: "async function fetchUser(id) {\n  const res = await fetch(`/users/${id}`);\n  return res.json();\n}\n",
	},
	{
		title:    "Promises",
		template: "function delay(ms) {\n  // return a promise that resolves after ms milliseconds\n}\n",
		solution: "function delay(ms) {\n  return new Promise((resolve) => setTimeout(resolve, ms));\n}\n",
	},
	{
		title:    "Closures",
		template: "function makeCounter() {\n  // return a function that returns 1, 2, 3, ... on successive calls\n}\n",
		solution: "function makeCounter() {\n  let count = 0;\n  return () => ++count;\n}\n",
	},
	{
		title:    "Array methods",
		template: "function evenSquares(nums) {\n  // return the squares of the even numbers\n}\n",
		solution: "function evenSquares(nums) {\n  return nums.filter((n) => n % 2 === 0).map((n) => n * n);\n}\n",
	},
}

// Seed installs the starter code blocks if the table is empty.
// Returns the number of blocks inserted.
func (s *SQLiteStore) Seed(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM code_blocks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count code blocks: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	inserted := 0
	for _, b := range starterBlocks {
		if _, err := s.CreateCodeBlock(ctx, b.title, b.template, b.solution); err != nil {
			return inserted, fmt.Errorf("seed %q: %w", b.title, err)
		}
		inserted++
	}
	return inserted, nil
}
