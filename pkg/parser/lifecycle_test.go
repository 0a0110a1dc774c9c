package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleParser_Feed(t *testing.T) {
	p := NewLifecycleParser(testLifecycleFormat(), testExtractor())

	tests := []struct {
		name     string
		line     string
		wantOK   bool
		wantKind Kind
		wantCat  string
		wantID   string
		wantErr  error
	}{
		{
			name:     "start",
			line:     "2025-12-12 10:00:00,000 INFO [pool-1] [c.o.s.s.d.LifeCycleServiceImpl] Переход Sign для документа [G1] запущен.",
			wantOK:   true,
			wantKind: KindStart,
			wantCat:  "Sign",
			wantID:   "G1",
		},
		{
			name:     "end",
			line:     "2025-12-12 10:00:02,500 INFO [pool-2] [c.o.s.s.d.LifeCycleServiceImpl] Переход Sign для документа [G1] завершен.",
			wantOK:   true,
			wantKind: KindEnd,
			wantCat:  "Sign",
			wantID:   "G1",
		},
		{
			name:     "transition name with spaces",
			line:     "2025-12-12 10:00:00,000 INFO [pool-1] [c.o.s.s.d.LifeCycleServiceImpl] Переход Send to bank для документа [G7] запущен.",
			wantOK:   true,
			wantKind: KindStart,
			wantCat:  "Send to bank",
			wantID:   "G7",
		},
		{
			name:     "check started",
			line:     "2025-12-12 10:00:00,000 INFO [pool-1] [c.o.s.CheckServiceImpl] Операция checkDocument для документа [G1] запущена",
			wantOK:   true,
			wantKind: KindCheckStart,
			wantCat:  "Операция checkDocument",
		},
		{
			name:     "check completed",
			line:     "2025-12-12 10:00:01,000 INFO [pool-1] [c.o.s.CheckServiceImpl] Операция checkDocument для документа [G1] завершена",
			wantOK:   true,
			wantKind: KindCheckEnd,
			wantCat:  "Операция checkDocument",
		},
		{
			name: "unrelated line",
			line: "2025-12-12 10:00:00,000 INFO [pool-1] [c.o.s.Other] hello",
		},
		{
			name:    "malformed timestamp",
			line:    "2025-13-45 99:00:00,000 INFO [pool-1] [c.o.s.s.d.LifeCycleServiceImpl] Переход Sign для документа [G1] запущен.",
			wantErr: ErrMalformedTimestamp,
		},
		{
			name:    "missing separator",
			line:    "2025-12-12 10:00:00,000 INFO [pool-1] [c.o.s.s.d.LifeCycleServiceImpl] Переход Sign [G1] запущен.",
			wantErr: ErrUnparseableLine,
		},
		{
			name:    "missing entity id",
			line:    "2025-12-12 10:00:00,000 INFO [pool-1] [c.o.s.s.d.LifeCycleServiceImpl] Переход Sign для документа G1 запущен.",
			wantErr: ErrUnparseableLine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok, err := p.Feed(LogLine{Content: tt.line, Source: "server.log", LineNum: 3, FileIndex: 1})
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "error %v is not %v", err, tt.wantErr)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantKind, ev.Kind)
			assert.Equal(t, tt.wantCat, ev.Category)
			assert.Equal(t, tt.wantID, ev.EntityID)
			assert.Contains(t, ev.ThreadName, "pool-")
			assert.Equal(t, "server.log", ev.Source)
			assert.Equal(t, 3, ev.LineNum)
			assert.Equal(t, 1, ev.FileIndex)
		})
	}
}

func TestLifecycleParser_Timestamp(t *testing.T) {
	p := NewLifecycleParser(testLifecycleFormat(), testExtractor())

	ev, ok, err := p.Feed(LogLine{Content: "2025-12-12 10:00:02,500 INFO [t] [c.o.s.s.d.LifeCycleServiceImpl] Переход X для документа [G1] завершен."})
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, ev.Timestamp.Equal(ms(2025, 12, 12, 10, 0, 2, 500)))
	assert.Nil(t, ev.DurationMillis)
}

func TestLifecycleParser_CheckAtAnyLevel(t *testing.T) {
	p := NewLifecycleParser(testLifecycleFormat(), testExtractor())

	ev, ok, err := p.Feed(LogLine{Content: "2025-12-12 10:00:04,250 DEBUG [t] [c.o.s.CheckServiceImpl] Операция checkDocument для документа [G1] запущена"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, KindCheckStart, ev.Kind)
	assert.True(t, ev.Timestamp.Equal(ms(2025, 12, 12, 10, 0, 4, 250)))

	_, ok, err = p.Feed(LogLine{Content: "bad Операция checkDocument"})
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrUnparseableLine)
}

func TestLifecycleParser_Flush(t *testing.T) {
	p := NewLifecycleParser(testLifecycleFormat(), testExtractor())
	assert.NoError(t, p.Flush())
}
