package security

import "testing"

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("sw0rdfish!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "sw0rdfish!" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !ComparePassword("sw0rdfish!", hash) {
		t.Fatal("correct password rejected")
	}
	if ComparePassword("not-the-password", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestHashPasswordSalts(t *testing.T) {
	a, err := HashPassword("sw0rdfish!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := HashPassword("sw0rdfish!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatal("identical hashes, salting broken")
	}
}

func TestComparePasswordBadDigest(t *testing.T) {
	if ComparePassword("anything", "not-a-bcrypt-digest") {
		t.Fatal("malformed digest accepted")
	}
}
