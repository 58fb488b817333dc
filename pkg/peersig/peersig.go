// Package peersig implements the marshalled peer-signalling channels:
// the topology, mirror and DFU channels that carry typed messages
// between the two earbuds over the peer ACL. Each channel has a single
// incoming and single outgoing task. CBOR-tagged structs plus a
// canonical encoder/decoder pair, the same split a typed message/codec
// layer uses for request/response framing, here generalised to
// peer<->peer typed channel messages.
package peersig

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	enc, err := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("peersig: bad CBOR encoder options: %v", err))
	}
	encMode = enc

	dec, err := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("peersig: bad CBOR decoder options: %v", err))
	}
	decMode = dec
}

// ChannelID identifies one of the three peer-signalling channels.
type ChannelID uint8

const (
	ChannelTopology ChannelID = iota
	ChannelMirror
	ChannelDFU
)

// MessageType discriminates the payload carried by an Envelope.
type MessageType uint8

const (
	MsgRemoteRuleEvent MessageType = iota
	MsgHFPVolume
	MsgHFPCodecAndVolume
	MsgA2DPVolume
	MsgA2DPStreamContext
	MsgKymeraSCOStarted
	MsgPeerEraseReq
	MsgPeerEraseRes
	MsgPeerDeviceNotInUse
	MsgPeerSetContext
)

// Envelope is the on-wire frame for every peer-signalling message: a
// channel id, a message type discriminant, and a CBOR-encoded payload
// specific to that type.
type Envelope struct {
	Channel ChannelID   `cbor:"1,keyasint"`
	Type    MessageType `cbor:"2,keyasint"`
	Payload []byte      `cbor:"3,keyasint,omitempty"`
}

// RemoteRuleEvent carries a rule-event set to inject on the peer.
type RemoteRuleEvent struct {
	Events uint64 `cbor:"1,keyasint"`
}

// HFPVolume carries the HFP speaker volume (0-15).
type HFPVolume struct {
	Volume uint8 `cbor:"1,keyasint"`
}

// HFPCodecAndVolume carries the negotiated HFP codec alongside volume.
type HFPCodecAndVolume struct {
	Codec  uint8 `cbor:"1,keyasint"`
	Volume uint8 `cbor:"2,keyasint"`
}

// A2DPVolume carries the A2DP absolute volume (0-127).
type A2DPVolume struct {
	Volume uint8 `cbor:"1,keyasint"`
}

// A2DPStreamContext carries the active A2DP stream's codec/sample-rate
// context, optionally requesting an acknowledgement.
type A2DPStreamContext struct {
	SampleRate uint32 `cbor:"1,keyasint"`
	Codec      uint8  `cbor:"2,keyasint"`
	RequestAck bool   `cbor:"3,keyasint,omitempty"`
}

// KymeraSCOStarted notifies the peer that the local audio subsystem has
// started rendering the mirrored SCO stream.
type KymeraSCOStarted struct{}

// PeerEraseReq/Res carry the DFU peer-erase handshake.
type PeerEraseReq struct {
	Requested bool `cbor:"1,keyasint"`
}

type PeerEraseRes struct {
	Status uint8 `cbor:"1,keyasint"`
}

// PeerDeviceNotInUse notifies the peer the local device is idle for DFU
// purposes.
type PeerDeviceNotInUse struct{}

// PeerSetContext carries an opaque DFU context blob to apply on the peer.
type PeerSetContext struct {
	Context []byte `cbor:"1,keyasint,omitempty"`
}

// Encode marshals msg (one of the typed payload structs above) into an
// Envelope for channel ch, type typ.
func Encode(ch ChannelID, typ MessageType, msg any) (Envelope, error) {
	payload, err := encMode.Marshal(msg)
	if err != nil {
		return Envelope{}, fmt.Errorf("peersig: encode payload: %w", err)
	}
	return Envelope{Channel: ch, Type: typ, Payload: payload}, nil
}

// Decode unmarshals an Envelope's payload into out, which must be a
// pointer to the struct type matching env.Type.
func Decode(env Envelope, out any) error {
	if err := decMode.Unmarshal(env.Payload, out); err != nil {
		return fmt.Errorf("peersig: decode payload (type %d): %w", env.Type, err)
	}
	return nil
}

// MarshalEnvelope encodes a full Envelope to wire bytes.
func MarshalEnvelope(env Envelope) ([]byte, error) {
	return encMode.Marshal(env)
}

// UnmarshalEnvelope decodes wire bytes into an Envelope.
func UnmarshalEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := decMode.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("peersig: decode envelope: %w", err)
	}
	return env, nil
}
