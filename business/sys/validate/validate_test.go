package validate_test

import (
	"testing"

	"github.com/ardanlabs/ledger/business/sys/validate"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

type newTx struct {
	Sender    string `json:"sender" validate:"required"`
	Recipient string `json:"recipient" validate:"required"`
	Amount    int64  `json:"amount" validate:"gt=0"`
}

func TestCheck(t *testing.T) {
	t.Log("Given the need to validate request values.")
	{
		t.Logf("\tTest 0:\tWhen the value is valid.")
		{
			if err := validate.Check(newTx{Sender: "Alice", Recipient: "Bob", Amount: 1}); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould pass validation: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould pass validation.", success)
		}

		t.Logf("\tTest 1:\tWhen fields are missing.")
		{
			err := validate.Check(newTx{Amount: 0})
			if !validate.IsFieldErrors(err) {
				t.Fatalf("\t%s\tTest 1:\tShould get field errors, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get field errors.", success)

			fields := validate.GetFieldErrors(err).Fields()
			for _, name := range []string{"sender", "recipient", "amount"} {
				if _, exists := fields[name]; !exists {
					t.Fatalf("\t%s\tTest 1:\tShould name the %q field: %v", failed, name, fields)
				}
			}
			t.Logf("\t%s\tTest 1:\tShould name fields by their json tag.", success)
		}
	}
}
