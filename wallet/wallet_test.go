package wallet

import "testing"

func TestMakeWalletAddressValidates(t *testing.T) {
	w := MakeWallet()
	address := w.Address()

	if !ValidateAddress(string(address)) {
		t.Fatalf("expected generated address %q to validate", address)
	}
}

func TestValidateAddressRejectsTamperedChecksum(t *testing.T) {
	w := MakeWallet()
	address := []byte(string(w.Address()))
	address[len(address)-1] ^= 0xFF

	if ValidateAddress(string(address)) {
		t.Fatal("expected a tampered address to fail validation")
	}
}

func TestChecksumDeterministic(t *testing.T) {
	payload := []byte("some payload")
	if string(Checksum(payload)) != string(Checksum(payload)) {
		t.Fatal("Checksum should be deterministic for the same payload")
	}
	if len(Checksum(payload)) != checksumLength {
		t.Fatalf("expected checksum length %d, got %d", checksumLength, len(Checksum(payload)))
	}
}

func TestWalletGobRoundTrip(t *testing.T) {
	w := MakeWallet()

	encoded, err := w.GobEncode()
	if err != nil {
		t.Fatalf("GobEncode failed: %v", err)
	}

	var decoded Wallet
	if err := decoded.GobDecode(encoded); err != nil {
		t.Fatalf("GobDecode failed: %v", err)
	}

	if string(decoded.Address()) != string(w.Address()) {
		t.Fatalf("address mismatch after gob round trip: got %q, want %q", decoded.Address(), w.Address())
	}
}
