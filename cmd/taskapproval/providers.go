package main

// Provider blank imports. Each import activates a self-registering
// notifier variant.

import (
	_ "github.com/sonntkms/taskapproval/internal/adapter/email"
)
