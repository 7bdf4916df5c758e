package bedrock

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"net"
	"testing"
	"time"
)

const testMOTD = "MCPE;Dedicated Server;390;1.14.60;0;10;13253860892328930865;Bedrock level;Survival;1;19132;19133"

func buildPong(t int64, motd string) []byte {
	buf := make([]byte, pongMOTDOffset+len(motd))
	buf[0] = unconnectedPongID
	binary.BigEndian.PutUint64(buf[pongTimeOffset:], uint64(t))
	binary.BigEndian.PutUint64(buf[pongGUIDOffset:], 0xfeed)
	copy(buf[pongMagicOffset:], unconnectedMagic[:])
	binary.BigEndian.PutUint16(buf[pongLenOffset:], uint16(len(motd)))
	copy(buf[pongMOTDOffset:], motd)
	return buf
}

func TestPingFrame_marshal(t *testing.T) {
	frame := pingFrame{time: 0x0102030405060708, guid: 0x1122334455667788}
	datagram := frame.marshal()

	if len(datagram) != 33 {
		t.Fatalf("want 33-byte request; got %d", len(datagram))
	}
	if datagram[0] != unconnectedPingID {
		t.Errorf("want packet id 0x01; got %#02x", datagram[0])
	}
	if got := binary.BigEndian.Uint64(datagram[1:9]); got != 0x0102030405060708 {
		t.Errorf("want big-endian time; got %#016x", got)
	}
	if !bytes.Equal(datagram[9:25], unconnectedMagic[:]) {
		t.Errorf("magic bytes missing: % x", datagram[9:25])
	}
	if got := binary.BigEndian.Uint64(datagram[25:33]); got != 0x1122334455667788 {
		t.Errorf("want big-endian guid; got %#016x", got)
	}
}

func TestParsePong(t *testing.T) {
	pong, ok := parsePong(buildPong(12345, testMOTD))
	if !ok {
		t.Fatal("valid pong should parse")
	}
	if pong.time != 12345 {
		t.Errorf("want echoed time 12345; got %d", pong.time)
	}
	if pong.motd != testMOTD {
		t.Errorf("want MOTD %q; got %q", testMOTD, pong.motd)
	}
}

func TestParsePong_malformed(t *testing.T) {
	valid := buildPong(1, testMOTD)

	wrongID := append([]byte(nil), valid...)
	wrongID[0] = 0x02

	wrongMagic := append([]byte(nil), valid...)
	wrongMagic[pongMagicOffset] ^= 0xff

	wrongLen := append([]byte(nil), valid...)
	binary.BigEndian.PutUint16(wrongLen[pongLenOffset:], uint16(len(testMOTD)-1))

	tt := []struct {
		name     string
		datagram []byte
	}{
		{name: "empty", datagram: nil},
		{name: "too short", datagram: valid[:34]},
		{name: "wrong packet id", datagram: wrongID},
		{name: "wrong magic", datagram: wrongMagic},
		{name: "length mismatch", datagram: wrongLen},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := parsePong(tc.datagram); ok {
				t.Error("malformed datagram should not parse")
			}
		})
	}
}

// startServer runs a fake Bedrock server on the loopback interface that
// answers every valid unconnected ping by echoing its timestamp. Datagrams
// written through garbage let tests exercise the discard path.
func startServer(t *testing.T, motd string, garbage int) uint16 {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { pc.Close() })

	go func() {
		buf := make([]byte, 4096)
		for {
			n, addr, err := pc.ReadFrom(buf)
			if err != nil {
				return
			}
			if n != 33 || buf[0] != unconnectedPingID {
				continue
			}
			echoed := int64(binary.BigEndian.Uint64(buf[1:9]))

			for i := 0; i < garbage; i++ {
				_, _ = pc.WriteTo([]byte{0x42, 0x42, 0x42}, addr)
			}
			_, _ = pc.WriteTo(buildPong(echoed, motd), addr)
		}
	}()

	return uint16(pc.LocalAddr().(*net.UDPAddr).Port)
}

func TestPinger_Ping(t *testing.T) {
	port := startServer(t, testMOTD, 0)

	info, latency, err := Ping(context.Background(), "127.0.0.1", port, time.Second, 3)
	if err != nil {
		t.Fatal(err)
	}
	if info.Name != "Dedicated Server" {
		t.Errorf("want name %q; got %q", "Dedicated Server", info.Name)
	}
	if info.ProtocolVersion != 390 {
		t.Errorf("want protocol 390; got %d", info.ProtocolVersion)
	}
	if latency < 0 {
		t.Errorf("latency should not be negative; got %v", latency)
	}
}

func TestPinger_Ping_discardsGarbage(t *testing.T) {
	port := startServer(t, testMOTD, 5)

	info, _, err := Ping(context.Background(), "127.0.0.1", port, time.Second, 3)
	if err != nil {
		t.Fatal(err)
	}
	if info.Edition != "MCPE" {
		t.Errorf("want edition MCPE; got %q", info.Edition)
	}
}

func TestPinger_Ping_noResponse(t *testing.T) {
	// A socket nobody answers on.
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer pc.Close()
	port := uint16(pc.LocalAddr().(*net.UDPAddr).Port)

	const (
		retryTimeout = 50 * time.Millisecond
		retries      = 3
	)

	start := time.Now()
	_, _, err = Ping(context.Background(), "127.0.0.1", port, retryTimeout, retries)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrNoResponse) {
		t.Fatalf("want ErrNoResponse; got %v", err)
	}
	if elapsed < retryTimeout*retries {
		t.Errorf("all %d attempts should run their timeout; returned after %v", retries, elapsed)
	}
	if elapsed > retryTimeout*retries+time.Second {
		t.Errorf("retry loop overshot its bound; returned after %v", elapsed)
	}
}

func TestPinger_Ping_invalidMOTD(t *testing.T) {
	port := startServer(t, "MCPE;too;few", 0)

	_, _, err := Ping(context.Background(), "127.0.0.1", port, time.Second, 1)
	if !errors.Is(err, ErrInvalidServerInfo) {
		t.Errorf("want ErrInvalidServerInfo; got %v", err)
	}
}
