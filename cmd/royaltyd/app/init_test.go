package royaltyd

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/iov-one/weave/weavetest/assert"
)

func TestGenInitOptions(t *testing.T) {
	cases := []struct {
		args []string
		cur  string
		addr string
	}{
		{nil, "IOV", ""},
		{[]string{"ONE"}, "ONE", ""},
		{[]string{"TWO", "1234567890"}, "TWO", "1234567890"},
		{[]string{"THR", "5238975983695", "FOO"}, "THR", "5238975983695"},
	}

	for i, tc := range cases {
		t.Run(fmt.Sprintf("case-%d", i), func(t *testing.T) {
			val, err := GenInitOptions(tc.args)
			assert.Nil(t, err)

			var doc map[string]json.RawMessage
			assert.Nil(t, json.Unmarshal(val, &doc))
			if doc["cash"] == nil || doc["conf"] == nil {
				t.Fatal("genesis misses cash or conf section")
			}

			cc := fmt.Sprintf(`"ticker": "%s"`, tc.cur)
			assert.Equal(t, true, strings.Contains(string(val), cc))

			ca := fmt.Sprintf(`"address": "%s"`, tc.addr)
			if tc.addr == "" {
				// we just know there is an address, not what it is
				ca = ca[:len(ca)-1]
			}
			assert.Equal(t, true, strings.Contains(string(val), ca))
		})
	}
}

func TestGenInitOptionsRejectsBadTicker(t *testing.T) {
	if _, err := GenInitOptions([]string{"bad ticker"}); err == nil {
		t.Fatal("expected an error")
	}
}
