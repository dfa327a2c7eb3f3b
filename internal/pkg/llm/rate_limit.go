package llm

import (
	"golang.org/x/sync/semaphore"
)

var (
	ImageWeight = int64(10)
	ImageSem    = semaphore.NewWeighted(ImageWeight)
)
