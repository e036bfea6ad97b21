package kubernetes

import (
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/client/config"
)

// GetConfig resolves --kubeconfig, $KUBECONFIG, the in-cluster config and
// ~/.kube/config in that order
func GetConfig() (*rest.Config, error) {
	return config.GetConfig()
}

func NewClientSet() (*kubernetes.Clientset, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}

	return kubernetes.NewForConfig(cfg)
}
