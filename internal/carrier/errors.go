package carrier

import (
	"fmt"

	"github.com/mmcdole/datapass/internal/domain"
)

func wrongProvider(id string) error {
	return fmt.Errorf("%w: page is not from %s", domain.ErrParse, id)
}
