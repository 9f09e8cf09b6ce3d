package bsd

import "testing"

func TestChecksumRoundTrip(t *testing.T) {
	dl := diskLabel{SectorSize: 512, NumSectors: 63, NumTracks: 255, NumCylinders: 10, NumPartitions: MaxPartitions}
	dl.Partitions[0] = partitionEntry{Offset: 2048, Size: 100000, FSType: 7}

	buf := dl.encode()
	if !verifyChecksum(buf) {
		t.Fatal("expected checksum to verify")
	}

	decoded, ok := decodeLabel(buf)
	if !ok {
		t.Fatal("expected magic to decode")
	}
	if decoded.Partitions[0].Offset != 2048 || decoded.Partitions[0].Size != 100000 {
		t.Fatalf("partition entry did not round-trip: %+v", decoded.Partitions[0])
	}

	buf[150] ^= 0xff
	if verifyChecksum(buf) {
		t.Fatal("expected checksum mismatch after corrupting a partition entry byte")
	}
}

func TestAttrRoundTrip(t *testing.T) {
	s := bsdAttrString(8, 16)
	frag, cpg := parseBSDAttrs(s)
	if frag != 8 || cpg != 16 {
		t.Fatalf("attr round-trip mismatch: frag=%d cpg=%d", frag, cpg)
	}
}
