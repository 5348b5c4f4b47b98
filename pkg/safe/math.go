package safe

import (
	"math"
)

// SafeAdd performs int64 addition and panics on overflow/underflow.
func SafeAdd(a, b int64) int64 {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		panic("CORE_SAFE_ADD_OVERFLOW")
	}
	return a + b
}

// SafeSub performs int64 subtraction and panics on overflow/underflow.
func SafeSub(a, b int64) int64 {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		panic("CORE_SAFE_SUB_OVERFLOW")
	}
	return a - b
}

// SafeMul performs int64 multiplication and panics on overflow.
func SafeMul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	result := a * b
	if result/b != a {
		panic("CORE_SAFE_MUL_OVERFLOW")
	}
	return result
}

// SafeDiv performs int64 division and panics on division by zero.
func SafeDiv(a, b int64) int64 {
	if b == 0 {
		panic("CORE_SAFE_DIV_ZERO")
	}
	return a / b
}
