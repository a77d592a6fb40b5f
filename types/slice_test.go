// SPDX-License-Identifier: MIT
package types

import (
	"context"
	"math"
	"math/big"
	"reflect"
	"sync"
	"testing"
)

func TestInt64Slice_String(t *testing.T) {
	tests := []struct {
		name string
		sl   Int64Slice
		want string
	}{
		{name: "empty", sl: Int64Slice{}, want: "[]"},
		{name: "nil", sl: nil, want: "[]"},
		{name: "single", sl: Int64Slice{7}, want: "[7]"},
		{name: "roll order", sl: Int64Slice{3, 17, 9}, want: "[3, 17, 9]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sl.String(); got != tt.want {
				t.Errorf("Int64Slice.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInt64Slice_Sorted(t *testing.T) {
	sl := Int64Slice{3, 17, 9}

	if got, want := sl.Sorted(), (Int64Slice{3, 9, 17}); !reflect.DeepEqual(got, want) {
		t.Errorf("Int64Slice.Sorted() = %v, want %v", got, want)
	}
	if want := (Int64Slice{3, 17, 9}); !reflect.DeepEqual(sl, want) {
		t.Errorf("Int64Slice.Sorted() modified the receiver: %v", sl)
	}
}

func TestInt64Slice_Sum(t *testing.T) {
	type args struct {
		from, to int
	}

	sl := Int64Slice{1, 2, 3, 4}

	tests := []struct {
		name string
		args args
		want int64
	}{
		{name: "all", args: args{0, 4}, want: 10},
		{name: "highest two", args: args{2, 4}, want: 7},
		{name: "empty", args: args{2, 2}, want: 0},
		{name: "out of range", args: args{-3, 9}, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sl.Sum(context.Background(), tt.args.from, tt.args.to)
			if err != nil {
				t.Fatalf("Int64Slice.Sum() error = %v", err)
			}
			if got.Cmp(big.NewInt(tt.want)) != 0 {
				t.Errorf("Int64Slice.Sum() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInt64Slice_SumExact(t *testing.T) {
	sl := Int64Slice{math.MaxInt64, math.MaxInt64, 1}

	got, err := sl.Sum(context.Background(), 0, 3)
	if err != nil {
		t.Fatalf("Int64Slice.Sum() error = %v", err)
	}
	if want := "18446744073709551615"; got.String() != want {
		t.Errorf("Int64Slice.Sum() = %s, want %s", got, want)
	}
}

func TestInt64Slice_SumCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := (Int64Slice{1, 2}).Sum(ctx, 0, 2); err == nil {
		t.Error("Int64Slice.Sum() error = nil, want context.Canceled")
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp() = %d, want 3", got)
	}
	if got := Clamp[int64](-2, 0, 3); got != 0 {
		t.Errorf("Clamp() = %d, want 0", got)
	}
	if got := Clamp(2, 0, 3); got != 2 {
		t.Errorf("Clamp() = %d, want 2", got)
	}
}

func TestSafeCounter(t *testing.T) {
	var (
		c  SafeCounter
		wg sync.WaitGroup
	)

	wg.Add(10)
	for index := 0; index < 10; index++ {
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()

	if got := c.Value(); got != 10 {
		t.Errorf("SafeCounter.Value() = %d, want 10", got)
	}
}
