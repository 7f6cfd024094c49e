package merkle_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
)

// Data hashes its content with the strategy of the tree.
type Data struct {
	x string
}

// Hash hashes the values using the specified strategy.
func (d Data) Hash(strategy digest.Strategy) (string, error) {
	return strategy.Sum([]byte(d.x)), nil
}

// Equals tests for equality of two piece of data.
func (d Data) Equals(other Data) bool {
	return d.x == other.x
}

// =============================================================================

func h(s string) string {
	return digest.Sum([]byte(s))
}

func pair(left, right string) string {
	return digest.Sum([]byte(left + right))
}

var table = []struct {
	testCaseId   int
	data         []Data
	expectedHash string
}{
	{
		testCaseId:   0,
		data:         nil,
		expectedHash: "",
	},
	{
		testCaseId:   1,
		data:         []Data{{x: "Hello"}},
		expectedHash: h("Hello"),
	},
	{
		testCaseId:   2,
		data:         []Data{{x: "Hello"}, {x: "Hi"}},
		expectedHash: pair(h("Hello"), h("Hi")),
	},
	{
		testCaseId:   3,
		data:         []Data{{x: "Hello"}, {x: "Hi"}, {x: "Hey"}},
		expectedHash: pair(pair(h("Hello"), h("Hi")), pair(h("Hey"), h("Hey"))),
	},
	{
		testCaseId: 4,
		data:       []Data{{x: "Hello"}, {x: "Hi"}, {x: "Hey"}, {x: "Hola"}, {x: "Bonjour"}},
		expectedHash: pair(
			pair(pair(h("Hello"), h("Hi")), pair(h("Hey"), h("Hola"))),
			pair(pair(h("Bonjour"), h("Bonjour")), pair(h("Bonjour"), h("Bonjour"))),
		),
	},
}

// =============================================================================

func Test_NewTreeWithDefault(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		if tree.MerkleRoot != table[i].expectedHash {
			t.Errorf("[case:%d] error: expected hash equal to %v got %v", table[i].testCaseId, table[i].expectedHash, tree.MerkleRoot)
		}
	}
}

func Test_RootMatchesTree(t *testing.T) {
	for i := 0; i < len(table); i++ {
		var hashes []string
		for _, d := range table[i].data {
			hash, _ := d.Hash(digest.SHA256)
			hashes = append(hashes, hash)
		}

		if root := merkle.Root(hashes, digest.SHA256); root != table[i].expectedHash {
			t.Errorf("[case:%d] error: expected hash equal to %v got %v", table[i].testCaseId, table[i].expectedHash, root)
		}
	}
}

func Test_SingleLeafIsRoot(t *testing.T) {
	tree, err := merkle.NewTree([]Data{{x: "only"}})
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}
	if tree.MerkleRoot != h("only") {
		t.Errorf("error: expected the leaf digest %v got %v", h("only"), tree.MerkleRoot)
	}
	if tree.Root != tree.Leafs[0] {
		t.Errorf("error: expected the leaf node to be the root")
	}
}

func Test_EmptyTree(t *testing.T) {
	tree, err := merkle.NewTree([]Data{})
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}
	if tree.Root != nil || tree.MerkleRoot != "" {
		t.Errorf("error: expected no root, got %v", tree.MerkleRoot)
	}
	if err := tree.Verify(); err != nil {
		t.Errorf("error: unexpected error verifying empty tree: %v", err)
	}
}

func Test_WithHashStrategy(t *testing.T) {
	data := []Data{{x: "a"}, {x: "b"}, {x: "c"}}

	tree, err := merkle.NewTree(data, merkle.WithHashStrategy[Data](digest.Keccak256))
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	k := digest.Keccak256
	exp := k.Sum([]byte(k.Sum([]byte(k.Sum([]byte("a"))+k.Sum([]byte("b")))) + k.Sum([]byte(k.Sum([]byte("c"))+k.Sum([]byte("c"))))))
	if tree.MerkleRoot != exp {
		t.Errorf("error: expected hash equal to %v got %v", exp, tree.MerkleRoot)
	}
	if tree.Strategy() != digest.Keccak256 {
		t.Errorf("error: expected keccak256 strategy, got %s", tree.Strategy())
	}
}

func Test_Rebuild(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		if err := tree.Rebuild(); err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		if tree.MerkleRoot != table[i].expectedHash {
			t.Errorf("[case:%d] error: expected hash equal to %v got %v", table[i].testCaseId, table[i].expectedHash, tree.MerkleRoot)
		}
	}
}

func Test_Verify(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		if err := tree.Verify(); err != nil {
			t.Errorf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
	}

	tree, err := merkle.NewTree(table[3].data)
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}
	tree.MerkleRoot = h("tampered")
	if err := tree.Verify(); err == nil {
		t.Errorf("error: expected a tampered root to fail verification")
	}
}

func Test_ValuesAndContains(t *testing.T) {
	tree, err := merkle.NewTree(table[3].data)
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	values := tree.Values()
	if len(values) != len(table[3].data) {
		t.Fatalf("error: expected %d values got %d", len(table[3].data), len(values))
	}
	for i := range values {
		if !values[i].Equals(table[3].data[i]) {
			t.Errorf("error: expected value %d to be %v got %v", i, table[3].data[i], values[i])
		}
	}

	if !tree.Contains(Data{x: "Hey"}) {
		t.Errorf("error: expected tree to contain Hey")
	}
	if tree.Contains(Data{x: "Bye"}) {
		t.Errorf("error: expected tree to not contain Bye")
	}
}
