package inventory

import "github.com/mmdatafocus/factory_backend/models"

// SerialAllocator hands out contiguous serial ranges per item for one staging
// session, continuing from the item master's NextSerial.
type SerialAllocator struct {
	Next map[int]int64 `json:"next"`
}

func NewSerialAllocator() *SerialAllocator {
	return &SerialAllocator{Next: make(map[int]int64)}
}

// Allocate reserves qty serials for the item and returns the inclusive range.
func (a *SerialAllocator) Allocate(item models.Item, qty int64) (start int64, end int64) {
	if a.Next == nil {
		a.Next = make(map[int]int64)
	}
	start, ok := a.Next[item.ID]
	if !ok {
		start = 1
		if item.NextSerial != nil && *item.NextSerial > 0 {
			start = *item.NextSerial
		}
	}
	end = start + qty - 1
	a.Next[item.ID] = end + 1
	return start, end
}

func (a *SerialAllocator) Reset() {
	a.Next = make(map[int]int64)
}
