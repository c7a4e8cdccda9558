package worker

// Assignment is the slice of the source scan a worker is responsible for.
// WorkerID is 1-based.
type Assignment struct {
	WorkerID     int
	TotalWorkers int
}

// OwnedBy reports whether the record at 0-based scan position index belongs
// to workerID. Every index maps to exactly one of the totalWorkers workers.
func OwnedBy(index, workerID, totalWorkers int) bool {
	return index%totalWorkers == workerID-1
}

func (a Assignment) Owns(index int) bool {
	return OwnedBy(index, a.WorkerID, a.TotalWorkers)
}

type ProcessingResult struct {
	WorkerID  int
	Processed int
	Err       error
}
