package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePacket(t *testing.T) {
	assert.Equal(t, `40/tutor,{"token":"t"}`, encodePacket(packetConnect, "/tutor", []byte(`{"token":"t"}`)))
	assert.Equal(t, `40{"token":"t"}`, encodePacket(packetConnect, "/", []byte(`{"token":"t"}`)))

	s, err := encodeEvent("/realtime", "message", map[string]string{"text": "hola"})
	require.NoError(t, err)
	assert.Equal(t, `42/realtime,["message",{"text":"hola"}]`, s)
}

func TestDecodePacket(t *testing.T) {
	tests := []struct {
		in   string
		want packet
	}{
		{`0/tutor,{"sid":"abc"}`, packet{Type: packetConnect, Namespace: "/tutor", Data: json.RawMessage(`{"sid":"abc"}`)}},
		{`2/tutor,["reply",{"text":"hi"}]`, packet{Type: packetEvent, Namespace: "/tutor", Data: json.RawMessage(`["reply",{"text":"hi"}]`)}},
		{`2/tutor,7["reply"]`, packet{Type: packetEvent, Namespace: "/tutor", AckID: "7", Data: json.RawMessage(`["reply"]`)}},
		{`2["ping"]`, packet{Type: packetEvent, Namespace: "/", Data: json.RawMessage(`["ping"]`)}},
		{`4/realtime,{"message":"unauthorized"}`, packet{Type: packetConnectError, Namespace: "/realtime", Data: json.RawMessage(`{"message":"unauthorized"}`)}},
		{`1/tutor,`, packet{Type: packetDisconnect, Namespace: "/tutor"}},
		{`1/tutor`, packet{Type: packetDisconnect, Namespace: "/tutor"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := decodePacket(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := decodePacket("")
	require.ErrorIs(t, err, errMalformedPacket)
	_, err = decodePacket(`2/tutor,{not json`)
	require.ErrorIs(t, err, errMalformedPacket)
}

func TestEventArgs(t *testing.T) {
	name, arg, err := eventArgs(json.RawMessage(`["reply",{"text":"hi"},2]`))
	require.NoError(t, err)
	assert.Equal(t, "reply", name)
	assert.JSONEq(t, `{"text":"hi"}`, string(arg))

	name, arg, err = eventArgs(json.RawMessage(`["bare"]`))
	require.NoError(t, err)
	assert.Equal(t, "bare", name)
	assert.Nil(t, arg)

	_, _, err = eventArgs(json.RawMessage(`{}`))
	require.Error(t, err)
}
