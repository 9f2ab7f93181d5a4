package serialization

import "testing"

func TestVLQUint64RoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 20, 1<<63 - 1, ^uint64(0)}
	for _, v := range cases {
		w := NewWriter()
		w.PutVLQUint64(v)
		r := NewReader(w.Bytes())
		got, err := r.GetVLQUint64()
		if err != nil {
			t.Fatalf("GetVLQUint64(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
		if r.Remaining() != 0 {
			t.Errorf("round trip %d: %d bytes left unread", v, r.Remaining())
		}
	}
}

func TestVLQUint64TooManyGroups(t *testing.T) {
	buf := make([]byte, 11)
	for i := range buf {
		buf[i] = 0xff
	}
	buf[10] = 0x01
	r := NewReader(buf)
	if _, err := r.GetVLQUint64(); err == nil {
		t.Fatal("expected overflow error for 11-group VLQ")
	}
}

func TestVLQTruncated(t *testing.T) {
	r := NewReader([]byte{0x80, 0x80})
	if _, err := r.GetVLQUint64(); err == nil {
		t.Fatal("expected truncation error")
	}
}

func TestVLQUint32RejectsOverflow(t *testing.T) {
	w := NewWriter()
	w.PutVLQUint64(uint64(1) << 40)
	r := NewReader(w.Bytes())
	if _, err := r.GetVLQUint32(); err == nil {
		t.Fatal("expected out-of-bounds error for value exceeding uint32")
	}
}

func TestZigZagInt64RoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 127, -128, 1 << 40, -(1 << 40)}
	for _, v := range cases {
		w := NewWriter()
		w.PutZigZagInt64(v)
		r := NewReader(w.Bytes())
		got, err := r.GetZigZagInt64()
		if err != nil {
			t.Fatalf("GetZigZagInt64(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
	}
}

func TestZigZagInt32RejectsOutOfRange(t *testing.T) {
	w := NewWriter()
	w.PutZigZagInt64(int64(1) << 32)
	r := NewReader(w.Bytes())
	if _, err := r.GetZigZagInt32(); err == nil {
		t.Fatal("expected range error for value exceeding int32")
	}
}

func TestZigZagInt16RoundTrip(t *testing.T) {
	cases := []int16{0, 1, -1, 32767, -32768}
	for _, v := range cases {
		w := NewWriter()
		w.PutZigZagInt16(v)
		r := NewReader(w.Bytes())
		got, err := r.GetZigZagInt16()
		if err != nil {
			t.Fatalf("GetZigZagInt16(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
	}
}

func TestByteRoundTrip(t *testing.T) {
	w := NewWriter()
	w.PutByte(-5)
	r := NewReader(w.Bytes())
	got, err := r.GetByte()
	if err != nil {
		t.Fatal(err)
	}
	if got != -5 {
		t.Errorf("got %d, want -5", got)
	}
}
