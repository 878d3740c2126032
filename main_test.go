package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Papalexios/amz-neuralmesh/internal/pipeline"
)

func TestTallyJobs(t *testing.T) {
	jobs := []pipeline.Job{
		{Status: pipeline.StatusQueued},
		{Status: pipeline.StatusQueued},
		{Status: pipeline.StatusScanning},
		{Status: pipeline.StatusOptimizing},
		{Status: pipeline.StatusReviewPending},
		{Status: pipeline.StatusPublished},
		{Status: pipeline.StatusError},
		{Status: pipeline.StatusIdle},
	}

	queued, active, review, published, failed := tallyJobs(jobs)

	assert.Equal(t, 2, queued)
	assert.Equal(t, 2, active)
	assert.Equal(t, 1, review)
	assert.Equal(t, 1, published)
	assert.Equal(t, 1, failed)
}
