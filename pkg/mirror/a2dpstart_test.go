package mirror

import "testing"

func TestSelectStartMode(t *testing.T) {
	cases := []struct {
		name                                                        string
		isQ2Q, isPrimary, mirroredStreaming, peerSync, switching bool
		want                                                        StartMode
	}{
		{"q2q always wins", true, true, true, true, true, Q2Q},
		{"primary resume into already-streaming mirror", false, true, true, true, false, PrimarySyncUnmute},
		{"primary cold start with peer sync", false, true, false, true, false, PrimarySynchronised},
		{"primary cold start no peer sync", false, true, false, false, false, PrimaryUnsynchronised},
		{"secondary mid handset switch", false, false, false, false, true, SecondarySynchronised},
		{"secondary steady", false, false, false, false, false, SecondarySyncUnmute},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := SelectStartMode(c.isQ2Q, c.isPrimary, c.mirroredStreaming, c.peerSync, c.switching)
			if got != c.want {
				t.Errorf("got %s, want %s", got, c.want)
			}
		})
	}
}
