//go:build darwin && cgo

package auth

/*
#cgo CFLAGS: -x objective-c -fobjc-arc
#cgo LDFLAGS: -framework Foundation -framework LocalAuthentication
#include <stdlib.h>
#include <string.h>
#import <Foundation/Foundation.h>
#import <LocalAuthentication/LocalAuthentication.h>

#define KM_POLICY_BIOMETRICS 1
#define KM_POLICY_BIOMETRICS_OR_WATCH 2

static LAPolicy km_policy(int p) {
	if (p == KM_POLICY_BIOMETRICS_OR_WATCH) {
		return LAPolicyDeviceOwnerAuthenticationWithBiometricsOrWatch;
	}
	return LAPolicyDeviceOwnerAuthenticationWithBiometrics;
}

static char *km_describe(NSError *err) {
	if (err == nil) {
		return NULL;
	}
	const char *msg = [[err localizedDescription] UTF8String];
	return msg ? strdup(msg) : NULL;
}

static int km_can_evaluate(int policy, char **errOut) {
	@autoreleasepool {
		LAContext *ctx = [[LAContext alloc] init];
		NSError *err = nil;
		BOOL ok = [ctx canEvaluatePolicy:km_policy(policy) error:&err];
		if (!ok) {
			*errOut = km_describe(err);
		}
		return ok ? 1 : 0;
	}
}

static int km_evaluate(int policy, const char *reason, char **errOut) {
	@autoreleasepool {
		LAContext *ctx = [[LAContext alloc] init];
		ctx.touchIDAuthenticationAllowableReuseDuration = 0;

		dispatch_semaphore_t done = dispatch_semaphore_create(0);
		__block int result = 0;
		__block char *msg = NULL;

		[ctx evaluatePolicy:km_policy(policy)
			localizedReason:[NSString stringWithUTF8String:reason]
			reply:^(BOOL success, NSError *error) {
				if (success && error == nil) {
					result = 1;
				} else {
					msg = km_describe(error);
				}
				dispatch_semaphore_signal(done);
			}];

		dispatch_semaphore_wait(done, DISPATCH_TIME_FOREVER);
		*errOut = msg;
		return result;
	}
}
*/
import "C"

import (
	"context"
	"errors"
	"unsafe"
)

// localAuthenticator drives LocalAuthentication's LAContext. Each call uses
// a fresh context so no proof is shared between challenges.
type localAuthenticator struct{}

// NewPlatformAuthenticator returns the LocalAuthentication authenticator.
func NewPlatformAuthenticator() Authenticator {
	return localAuthenticator{}
}

func (localAuthenticator) CanEvaluate(policy Policy) (bool, error) {
	var cerr *C.char
	ok := C.km_can_evaluate(policyCode(policy), &cerr)
	return ok == 1, takeError(cerr)
}

// Evaluate blocks on the platform reply. If ctx ends first the prompt stays
// on screen but its reply is discarded and the call reports a denial.
func (localAuthenticator) Evaluate(ctx context.Context, policy Policy, reason string) (bool, error) {
	type reply struct {
		ok  bool
		err error
	}
	replies := make(chan reply, 1)

	creason := C.CString(reason)
	go func() {
		defer C.free(unsafe.Pointer(creason))
		var cerr *C.char
		ok := C.km_evaluate(policyCode(policy), creason, &cerr)
		replies <- reply{ok: ok == 1, err: takeError(cerr)}
	}()

	select {
	case r := <-replies:
		return r.ok, r.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func policyCode(policy Policy) C.int {
	if policy == PolicyBiometricsOrWatch {
		return C.KM_POLICY_BIOMETRICS_OR_WATCH
	}
	return C.KM_POLICY_BIOMETRICS
}

func takeError(cerr *C.char) error {
	if cerr == nil {
		return nil
	}
	defer C.free(unsafe.Pointer(cerr))
	return errors.New(C.GoString(cerr))
}
