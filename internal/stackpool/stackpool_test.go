package stackpool

import "testing"

func TestGetPutReuse(t *testing.T) {
	Configure(0x1000)

	buf1 := Get(0x1000)
	if len(buf1) != 0x1000 {
		t.Fatalf("len = %d, want %d", len(buf1), 0x1000)
	}
	buf1[0] = 0xAB
	ptr1 := &buf1[0]
	Put(buf1)

	buf2 := Get(0x1000)
	if buf2[0] != 0 {
		t.Errorf("Get() returned a non-zeroed buffer")
	}
	ptr2 := &buf2[0]
	t.Logf("reused=%v", ptr1 == ptr2)
}

func TestGetNonDefaultSizeBypassesPool(t *testing.T) {
	Configure(0x1000)
	buf := Get(0x2000)
	if len(buf) != 0x2000 {
		t.Fatalf("len = %d, want %d", len(buf), 0x2000)
	}
	Put(buf) // must not panic
}
