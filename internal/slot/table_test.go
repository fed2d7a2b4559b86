package slot

import (
	"sync"
	"testing"

	"github.com/Iron-Ham/msgslot/internal/errors"
)

func TestTable_FindOrCreate(t *testing.T) {
	var table Table

	ch, created, err := table.FindOrCreate(7)
	if err != nil {
		t.Fatalf("FindOrCreate(7) error = %v", err)
	}
	if !created {
		t.Error("FindOrCreate(7) created = false, want true on first call")
	}
	if ch.ID() != 7 {
		t.Errorf("ID() = %d, want 7", ch.ID())
	}
	if ch.Len() != 0 {
		t.Errorf("new channel Len() = %d, want 0", ch.Len())
	}

	again, created, err := table.FindOrCreate(7)
	if err != nil {
		t.Fatalf("FindOrCreate(7) second call error = %v", err)
	}
	if created {
		t.Error("FindOrCreate(7) created = true on second call")
	}
	if again != ch {
		t.Error("FindOrCreate(7) returned a different channel for the same id")
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
}

func TestTable_FindOrCreateRejectsZero(t *testing.T) {
	var table Table

	_, _, err := table.FindOrCreate(NoChannel)
	if !errors.Is(err, errors.ErrInvalidArgument) {
		t.Fatalf("FindOrCreate(0) error = %v, want ErrInvalidArgument", err)
	}
	if table.Len() != 0 {
		t.Errorf("Len() = %d after rejected id, want 0", table.Len())
	}
}

func TestTable_MaxChannels(t *testing.T) {
	table := Table{maxChannels: 2}

	for _, id := range []uint32{1, 2} {
		if _, _, err := table.FindOrCreate(id); err != nil {
			t.Fatalf("FindOrCreate(%d) error = %v", id, err)
		}
	}

	_, _, err := table.FindOrCreate(3)
	if !errors.Is(err, errors.ErrResourceExhausted) {
		t.Fatalf("FindOrCreate(3) error = %v, want ErrResourceExhausted", err)
	}

	// Existing channels are still reachable at the limit.
	if _, created, err := table.FindOrCreate(1); err != nil || created {
		t.Errorf("FindOrCreate(1) = created %v, err %v; want existing channel", created, err)
	}
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}
}

func TestTable_Lookup(t *testing.T) {
	var table Table

	if _, ok := table.Lookup(9); ok {
		t.Error("Lookup(9) on empty table should miss")
	}
	want, _, _ := table.FindOrCreate(9)
	got, ok := table.Lookup(9)
	if !ok || got != want {
		t.Errorf("Lookup(9) = %p, %v; want %p, true", got, ok, want)
	}
}

func TestTable_ChannelsInInsertionOrder(t *testing.T) {
	var table Table

	for _, id := range []uint32{30, 10, 20} {
		if _, _, err := table.FindOrCreate(id); err != nil {
			t.Fatalf("FindOrCreate(%d) error = %v", id, err)
		}
	}
	ch, _ := table.Lookup(10)
	ch.store([]byte("abc"))

	infos := table.Channels()
	want := []ChannelInfo{{ID: 30}, {ID: 10, Length: 3}, {ID: 20}}
	if len(infos) != len(want) {
		t.Fatalf("Channels() returned %d entries, want %d", len(infos), len(want))
	}
	for i := range want {
		if infos[i] != want[i] {
			t.Errorf("Channels()[%d] = %+v, want %+v", i, infos[i], want[i])
		}
	}
}

func TestTable_Release(t *testing.T) {
	var table Table

	ch, _, _ := table.FindOrCreate(4)
	ch.store([]byte("x"))
	table.FindOrCreate(5)

	if n := table.release(); n != 2 {
		t.Errorf("release() = %d, want 2", n)
	}
	if table.Len() != 0 {
		t.Errorf("Len() after release = %d, want 0", table.Len())
	}
	if ch.Len() != 0 {
		t.Errorf("released channel Len() = %d, want 0", ch.Len())
	}
	if ch.store([]byte("y")) {
		t.Error("store() on a released channel = true, want false")
	}
	if _, err := ch.load(make([]byte, 8)); !errors.Is(err, errors.ErrDeviceClosed) {
		t.Errorf("load() on a released channel error = %v, want ErrDeviceClosed", err)
	}
}

func TestTable_ConcurrentFindOrCreate(t *testing.T) {
	var table Table

	const workers = 32
	results := make([]*Channel, workers)
	var createdCount int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ch, created, err := table.FindOrCreate(42)
			if err != nil {
				t.Errorf("FindOrCreate(42) error = %v", err)
				return
			}
			results[i] = ch
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if createdCount != 1 {
		t.Errorf("channel created %d times, want exactly once", createdCount)
	}
	for i, ch := range results {
		if ch != results[0] {
			t.Errorf("worker %d got a different channel", i)
		}
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
}

func TestRegistry_Table(t *testing.T) {
	r := NewRegistry(0)

	tests := []struct {
		instance int
		wantErr  bool
	}{
		{instance: 0},
		{instance: 5},
		{instance: MaxInstances - 1},
		{instance: -1, wantErr: true},
		{instance: MaxInstances, wantErr: true},
	}

	for _, tt := range tests {
		table, err := r.Table(tt.instance)
		if tt.wantErr {
			if !errors.Is(err, errors.ErrInvalidArgument) {
				t.Errorf("Table(%d) error = %v, want ErrInvalidArgument", tt.instance, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Table(%d) error = %v", tt.instance, err)
			continue
		}
		if table.Instance() != tt.instance {
			t.Errorf("Table(%d).Instance() = %d", tt.instance, table.Instance())
		}
	}
}

func TestRegistry_InstancesAreIndependent(t *testing.T) {
	r := NewRegistry(0)

	a, _ := r.Table(1)
	b, _ := r.Table(2)
	chA, _, _ := a.FindOrCreate(7)
	chB, _, _ := b.FindOrCreate(7)
	if chA == chB {
		t.Fatal("channel 7 on different instances must be distinct")
	}

	chA.store([]byte("one"))
	if chB.Len() != 0 {
		t.Errorf("write on instance 1 leaked into instance 2 (Len() = %d)", chB.Len())
	}
}

func TestRegistry_StatAndRelease(t *testing.T) {
	r := NewRegistry(0)

	t3, _ := r.Table(3)
	t3.FindOrCreate(1)
	t3.FindOrCreate(2)
	t9, _ := r.Table(9)
	t9.FindOrCreate(1)

	stats := r.Stat()
	if len(stats) != 2 {
		t.Fatalf("Stat() returned %d instances, want 2", len(stats))
	}
	if stats[0].Instance != 3 || len(stats[0].Channels) != 2 {
		t.Errorf("Stat()[0] = %+v, want instance 3 with 2 channels", stats[0])
	}
	if stats[1].Instance != 9 || len(stats[1].Channels) != 1 {
		t.Errorf("Stat()[1] = %+v, want instance 9 with 1 channel", stats[1])
	}
	if r.ChannelCount() != 3 {
		t.Errorf("ChannelCount() = %d, want 3", r.ChannelCount())
	}

	if n := r.Release(); n != 3 {
		t.Errorf("Release() = %d, want 3", n)
	}
	if r.ChannelCount() != 0 {
		t.Errorf("ChannelCount() after Release = %d, want 0", r.ChannelCount())
	}
}
