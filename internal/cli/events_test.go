package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSSE(t *testing.T) {
	stream := strings.Join([]string{
		"event: room:state",
		`data: {"code":"ABC234"}`,
		"",
		": keepalive",
		"",
		"event: room:deleted",
		`data: {"code":"ABC234"}`,
		"",
		"event: room:state",
		`data: {"code":"never"}`,
		"",
	}, "\n")

	var events []string
	err := readSSE(strings.NewReader(stream), func(event, data string) bool {
		events = append(events, event+" "+data)
		return event != eventRoomDeleted
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		`room:state {"code":"ABC234"}`,
		`room:deleted {"code":"ABC234"}`,
	}, events)
}

func TestReadSSEJoinsMultilineData(t *testing.T) {
	var got string
	err := readSSE(strings.NewReader("event: x\ndata: a\ndata: b\n\n"), func(event, data string) bool {
		got = data
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, "a\nb", got)
}

func TestSummarizeRoomState(t *testing.T) {
	data := `{"code":"ABC234","phase":"lobby","version":3,"players":[{"id":"p1","name":"Alice","isHost":true},{"id":"p2","name":"Bob"}]}`

	assert.Equal(t, "phase=lobby version=3 players=[Alice*, Bob]", summarizeEvent(eventRoomState, data))
}

func TestPrintEventJSON(t *testing.T) {
	var buf bytes.Buffer
	printEvent(&buf, eventRoomDeleted, `{"code":"ABC234"}`, true)

	assert.Contains(t, buf.String(), `"event":"room:deleted"`)
	assert.Contains(t, buf.String(), `"data":"{\"code\":\"ABC234\"}"`)
}
