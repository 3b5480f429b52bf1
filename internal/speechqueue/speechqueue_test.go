package speechqueue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueInterruptClearsPending(t *testing.T) {
	driver := NewInProcessDriver()
	q := New(driver, nil)
	q.Enqueue(Utterance{Text: "first", Interrupt: false})
	q.Enqueue(Utterance{Text: "second", Interrupt: true})
	q.Flush()
	assert.Equal(t, []Utterance{{Text: "second", Interrupt: true}}, driver.Spoken())
	assert.Equal(t, 1, driver.StopCount())
}

func TestStopWithNoPendingUtteranceIsANoOp(t *testing.T) {
	driver := NewInProcessDriver()
	q := New(driver, nil)
	q.Stop()
	assert.Equal(t, 1, driver.StopCount())
	q.Flush()
	assert.Empty(t, driver.Spoken())
}

func TestFlushDeliversInOrder(t *testing.T) {
	driver := NewInProcessDriver()
	q := New(driver, nil)
	q.Enqueue(Utterance{Text: "a", Interrupt: true})
	q.Enqueue(Utterance{Text: "b"})
	q.Enqueue(Utterance{Text: "c"})
	q.Flush()
	got := driver.Spoken()
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Text)
	assert.Equal(t, "b", got[1].Text)
	assert.Equal(t, "c", got[2].Text)
}

func TestRPCRequestRoundTripsByteIdentical(t *testing.T) {
	req := rpcRequest{JSONRPC: "2.0", ID: 7, Method: "speak", Params: speakParams{Text: "hi", Interrupt: true}}
	b, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded rpcRequest
	require.NoError(t, json.Unmarshal(b, &decoded))
	b2, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(b), string(b2))
}
